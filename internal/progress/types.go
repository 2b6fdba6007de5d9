package progress

import (
	"errors"
	"time"

	"mslcoach/internal/achievements"
	"mslcoach/internal/scoring"
	"mslcoach/internal/store"
)

// ErrSessionProcessing is the umbrella for SubmitSession failures: the
// session was not applied and stored progress is unchanged.
var ErrSessionProcessing = errors.New("session processing failed")

// ErrInvalidSession reports a submission rejected before scoring: missing
// user id, empty response text, or ids not present in the bank.
var ErrInvalidSession = errors.New("invalid session")

// ErrEmptySession reports a session with no interactions.
var ErrEmptySession = errors.New("session has no interactions")

// Interaction is one question-answer exchange inside a practice session.
type Interaction struct {
	ID           string `json:"id"`
	QuestionID   int    `json:"question_id"`
	PersonaID    string `json:"persona_id"`
	ResponseText string `json:"response_text"`
}

// Session is one completed practice session submitted for processing.
type Session struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      time.Time     `json:"ended_at"`
	Interactions []Interaction `json:"interactions"`
}

// ScoredInteraction pairs an interaction with its evaluation and the XP
// it earned.
type ScoredInteraction struct {
	Interaction
	Result  *scoring.ScoreResult `json:"result"`
	XPDelta int                  `json:"xp_delta"`
}

// SubmitResult is the outcome of one processed session. AlreadyProcessed
// marks a resubmission: the fields describe the original commit and no
// progress was applied a second time.
type SubmitResult struct {
	Progress         *store.UserProgress        `json:"progress"`
	Scored           []ScoredInteraction        `json:"scored"`
	XPDelta          int                        `json:"xp_delta"`
	NewlyUnlocked    []achievements.Achievement `json:"newly_unlocked,omitempty"`
	LevelsGained     int                        `json:"levels_gained"`
	SessionAverage   float64                    `json:"session_average"`
	AlreadyProcessed bool                       `json:"already_processed,omitempty"`
}
