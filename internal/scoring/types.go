package scoring

import (
	"errors"

	"mslcoach/internal/bank"
)

// ErrEvaluationFailed indicates the oracle timed out or returned output
// that could not be normalized. Scoring happens before any aggregate
// mutation, so this error never corrupts stored progress.
var ErrEvaluationFailed = errors.New("evaluation failed")

// Tier labels derived from fixed score thresholds.
const (
	TierExcellent        = "excellent"
	TierGood             = "good"
	TierNeedsImprovement = "needs_improvement"
)

// Score thresholds for the qualitative tiers.
const (
	ExcellentThreshold = 80
	GoodThreshold      = 60
)

// TierFor maps a numeric score to its qualitative tier.
func TierFor(score float64) string {
	switch {
	case score >= ExcellentThreshold:
		return TierExcellent
	case score >= GoodThreshold:
		return TierGood
	default:
		return TierNeedsImprovement
	}
}

// Rubric carries the persona priorities and question rubric the oracle
// evaluates a response against.
type Rubric struct {
	Question bank.Question
	Persona  bank.Persona
}

// ScoreResult is the normalized evaluation of one submitted response.
// Immutable once created; attached 1:1 to its interaction.
type ScoreResult struct {
	Score                   float64  `json:"score"`
	Tier                    string   `json:"tier"`
	Feedback                string   `json:"feedback"`
	PrioritiesCovered       []string `json:"priorities_covered"`
	EngagementPointsCovered []string `json:"engagement_points_covered"`
	MissingPoints           []string `json:"missing_points"`
}
