package bank

// Difficulty is the question difficulty tier.
type Difficulty string

const (
	DifficultyLow    Difficulty = "low"
	DifficultyMedium Difficulty = "medium"
	DifficultyHigh   Difficulty = "high"
)

// Valid reports whether d is one of the three known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyLow, DifficultyMedium, DifficultyHigh:
		return true
	}
	return false
}

// Question is one physician question from the bank.
type Question struct {
	ID         int        `json:"id"`
	Question   string     `json:"question"`
	Category   string     `json:"category"`
	Context    string     `json:"context"`
	KeyThemes  []string   `json:"key_themes"`
	Difficulty Difficulty `json:"difficulty"`
	// Personas lists the persona ids this question is relevant for.
	Personas []string `json:"persona"`
}

// RelevantFor reports whether the question applies to the given persona.
func (q Question) RelevantFor(personaID string) bool {
	for _, p := range q.Personas {
		if p == personaID {
			return true
		}
	}
	return false
}

// PracticeSetting describes where the physician practices.
type PracticeSetting struct {
	Type string `json:"type"`
}

// CommunicationStyle captures how the physician prefers to be engaged.
type CommunicationStyle struct {
	Tone string `json:"tone"`
}

// Persona is one physician persona. Only the fields the scoring rubric and
// generation prompts need are modeled here.
type Persona struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Specialty          string             `json:"specialty"`
	PracticeSetting    PracticeSetting    `json:"practice_setting"`
	Priorities         []string           `json:"priorities"`
	CommunicationStyle CommunicationStyle `json:"communication_style"`
	EngagementTips     []string           `json:"engagement_tips"`
}

// Filter selects a subset of the question bank.
type Filter struct {
	PersonaID  string
	Difficulty Difficulty
	Category   string
}
