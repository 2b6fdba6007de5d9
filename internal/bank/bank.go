package bank

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

//go:embed defaults/questions.json
var defaultQuestions []byte

//go:embed defaults/personas.json
var defaultPersonas []byte

// Bank holds the loaded question and persona banks. It is immutable after
// Load and safe for concurrent reads.
type Bank struct {
	questions  []Question
	personas   []Persona
	byQuestion map[int]Question
	byPersona  map[string]Persona
	categories []string
}

type questionsFile struct {
	Questions  []Question `json:"questions"`
	Categories []string   `json:"categories"`
}

type personasFile struct {
	Personas []Persona `json:"personas"`
}

// Load reads the banks from the given JSON files. An empty path falls back
// to the embedded defaults.
func Load(questionsPath, personasPath string) (*Bank, error) {
	qData := defaultQuestions
	if questionsPath != "" {
		data, err := os.ReadFile(questionsPath)
		if err != nil {
			return nil, fmt.Errorf("read questions file: %w", err)
		}
		qData = data
	}

	pData := defaultPersonas
	if personasPath != "" {
		data, err := os.ReadFile(personasPath)
		if err != nil {
			return nil, fmt.Errorf("read personas file: %w", err)
		}
		pData = data
	}

	var qf questionsFile
	if err := json.Unmarshal(qData, &qf); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	var pf personasFile
	if err := json.Unmarshal(pData, &pf); err != nil {
		return nil, fmt.Errorf("parse personas: %w", err)
	}

	b := &Bank{
		questions:  qf.Questions,
		personas:   pf.Personas,
		byQuestion: make(map[int]Question, len(qf.Questions)),
		byPersona:  make(map[string]Persona, len(pf.Personas)),
	}

	for _, q := range qf.Questions {
		if !q.Difficulty.Valid() {
			return nil, fmt.Errorf("question %d: unknown difficulty %q", q.ID, q.Difficulty)
		}
		if _, dup := b.byQuestion[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		b.byQuestion[q.ID] = q
	}
	for _, p := range pf.Personas {
		if _, dup := b.byPersona[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		b.byPersona[p.ID] = p
	}

	b.categories = qf.Categories
	if len(b.categories) == 0 {
		seen := make(map[string]bool)
		for _, q := range qf.Questions {
			if !seen[q.Category] {
				seen[q.Category] = true
				b.categories = append(b.categories, q.Category)
			}
		}
		sort.Strings(b.categories)
	}

	return b, nil
}

// Question returns the question with the given id.
func (b *Bank) Question(id int) (Question, bool) {
	q, ok := b.byQuestion[id]
	return q, ok
}

// Persona returns the persona with the given id.
func (b *Bank) Persona(id string) (Persona, bool) {
	p, ok := b.byPersona[id]
	return p, ok
}

// Personas returns all personas in bank order.
func (b *Bank) Personas() []Persona {
	return b.personas
}

// Categories returns all question categories.
func (b *Bank) Categories() []string {
	return b.categories
}

// Questions returns the questions matching the filter, in bank order.
// Zero-value filter fields match everything.
func (b *Bank) Questions(f Filter) []Question {
	var out []Question
	for _, q := range b.questions {
		if f.PersonaID != "" && !q.RelevantFor(f.PersonaID) {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		if f.Category != "" && q.Category != f.Category {
			continue
		}
		out = append(out, q)
	}
	return out
}
