package scoring

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"mslcoach/internal/bank"
	"mslcoach/internal/llm"
)

func testRubric(t *testing.T) Rubric {
	t.Helper()
	b, err := bank.Load("", "")
	require.NoError(t, err)
	q, ok := b.Question(2)
	require.True(t, ok)
	p, ok := b.Persona("data_driven_cardiologist")
	require.True(t, ok)
	return Rubric{Question: q, Persona: p}
}

func validEvaluationJSON() json.RawMessage {
	return json.RawMessage(`{
		"score": 88,
		"feedback": "Strong walkthrough of the primary endpoint with honest framing of effect size.",
		"priorities_covered": ["Trial methodology and statistical rigor"],
		"engagement_points_covered": ["Know the study design cold, including limitations"],
		"missing_points": ["Subgroup consistency across age and comorbidity"]
	}`)
}

func TestScore_Normalizes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validEvaluationJSON()})
	engine := NewEngine(mock, DefaultConfig())

	result, err := engine.Score(context.Background(), "The primary endpoint was...", testRubric(t))
	require.NoError(t, err)
	require.InDelta(t, 88, result.Score, 0.001)
	require.Equal(t, TierExcellent, result.Tier)
	require.NotEmpty(t, result.Feedback)
	require.Len(t, result.PrioritiesCovered, 1)

	// The rubric made it into the prompt.
	require.Equal(t, 1, mock.CallCount())
	sent := mock.Calls[0].Prompt
	require.Contains(t, sent, "Dr. Marcus Webb")
	require.Contains(t, sent, "primary endpoint")
}

func TestScore_ClampsOutOfRange(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"score": 130, "feedback": "f",
		"priorities_covered": [], "engagement_points_covered": [], "missing_points": []
	}`)})
	engine := NewEngine(mock, DefaultConfig())

	result, err := engine.Score(context.Background(), "answer", testRubric(t))
	require.NoError(t, err)
	require.InDelta(t, 100, result.Score, 0.001)
	require.Equal(t, TierExcellent, result.Tier)
}

func TestScore_EmptyResponseRejected(t *testing.T) {
	mock := llm.NewMockProvider()
	engine := NewEngine(mock, DefaultConfig())

	_, err := engine.Score(context.Background(), "   ", testRubric(t))
	require.Error(t, err)
	require.Equal(t, 0, mock.CallCount(), "no oracle call for invalid input")
}

func TestScore_OracleFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	engine := NewEngine(mock, DefaultConfig())

	_, err := engine.Score(context.Background(), "answer", testRubric(t))
	require.ErrorIs(t, err, ErrEvaluationFailed)
}

func TestScore_MalformedOutput(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json at all`)})
	engine := NewEngine(mock, DefaultConfig())

	_, err := engine.Score(context.Background(), "answer", testRubric(t))
	require.ErrorIs(t, err, ErrEvaluationFailed)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, TierExcellent},
		{80, TierExcellent},
		{79.9, TierGood},
		{60, TierGood},
		{59.9, TierNeedsImprovement},
		{0, TierNeedsImprovement},
	}
	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
