package artifacts

import "errors"

// ErrUnknownQuestion and ErrUnknownPersona report bank lookups that failed
// before any generation was attempted.
var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownPersona  = errors.New("unknown persona")
)

// GenericPersonaID is the persona slot for answers not tailored to any
// physician persona.
const GenericPersonaID = "generic"

// ModelAnswer is a cached exemplar response to one bank question,
// optionally tailored to a persona.
type ModelAnswer struct {
	QuestionID      int      `json:"question_id"`
	PersonaID       string   `json:"persona_id,omitempty"`
	PersonaName     string   `json:"persona_name,omitempty"`
	Question        string   `json:"question"`
	Category        string   `json:"category"`
	ModelAnswer     string   `json:"model_answer"`
	KeyPoints       []string `json:"key_points"`
	Reasoning       string   `json:"reasoning"`
	PersonaTailored bool     `json:"persona_tailored"`
}

// Scenario is a cached roleplay setup: the situation an MSL walks into
// before answering the question.
type Scenario struct {
	QuestionID     int      `json:"question_id"`
	PersonaID      string   `json:"persona_id"`
	PersonaName    string   `json:"persona_name"`
	Setting        string   `json:"setting"`
	PhysicianMood  string   `json:"physician_mood"`
	OpeningLine    string   `json:"opening_line"`
	Objectives     []string `json:"objectives"`
	HiddenConcerns []string `json:"hidden_concerns"`
}
