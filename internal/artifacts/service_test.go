package artifacts

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"mslcoach/internal/bank"
	"mslcoach/internal/contentcache"
	"mslcoach/internal/llm"
	"mslcoach/internal/store"
)

func newTestService(t *testing.T, mock *llm.MockProvider) *Service {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	b, err := bank.Load("", "")
	require.NoError(t, err)

	return NewService(mock, contentcache.New(s.CacheRepo(), nil), b, DefaultConfig(), nil)
}

func cannedModelAnswer() llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{
		"model_answer": "I hear the cost concern. Let me walk you through the value data...",
		"key_points": ["Total cost of care offsets", "Patient assistance program", "Payer coverage trends"],
		"reasoning": "Leads with empathy, then reframes unit price as total cost of care."
	}`)}
}

func cannedScenario() llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{
		"setting": "Hallway outside the cath lab between cases.",
		"physician_mood": "rushed but curious",
		"opening_line": "You have two minutes. Was that endpoint actually meaningful?",
		"objectives": ["State the effect size plainly", "Acknowledge the confidence interval"],
		"hidden_concerns": ["Being burned by overhyped data before"]
	}`)}
}

func TestModelAnswer_GenericGeneratesOnce(t *testing.T) {
	mock := llm.NewMockProvider(cannedModelAnswer())
	svc := newTestService(t, mock)

	answer, cached, err := svc.ModelAnswer(context.Background(), 1, "", 0)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 1, answer.QuestionID)
	require.Equal(t, "Cost & Value", answer.Category)
	require.False(t, answer.PersonaTailored)
	require.Empty(t, answer.PersonaID)
	require.NotEmpty(t, answer.ModelAnswer)
	require.Len(t, answer.KeyPoints, 3)

	// Second request is served from the cache.
	again, cached, err := svc.ModelAnswer(context.Background(), 1, "", 0)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, answer.ModelAnswer, again.ModelAnswer)
	require.Equal(t, 1, mock.CallCount())
}

func TestModelAnswer_PersonaTailored(t *testing.T) {
	mock := llm.NewMockProvider(cannedModelAnswer())
	svc := newTestService(t, mock)

	answer, _, err := svc.ModelAnswer(context.Background(), 1, "skeptical_pcp", 0)
	require.NoError(t, err)
	require.True(t, answer.PersonaTailored)
	require.Equal(t, "skeptical_pcp", answer.PersonaID)
	require.Equal(t, "Dr. Elena Rodriguez", answer.PersonaName)

	// The persona made it into the prompt.
	require.Contains(t, mock.Calls[0].Prompt, "Dr. Elena Rodriguez")
}

func TestModelAnswer_PersonaAndGenericAreDistinctKeys(t *testing.T) {
	mock := llm.NewMockProvider(cannedModelAnswer(), cannedModelAnswer())
	svc := newTestService(t, mock)

	_, cached, err := svc.ModelAnswer(context.Background(), 1, "", 0)
	require.NoError(t, err)
	require.False(t, cached)

	_, cached, err = svc.ModelAnswer(context.Background(), 1, "skeptical_pcp", 0)
	require.NoError(t, err)
	require.False(t, cached, "persona-tailored answer has its own cache slot")
	require.Equal(t, 2, mock.CallCount())
}

func TestModelAnswer_EmptyKeyPointsFallBackToThemes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"model_answer": "A response without explicit key points.",
		"key_points": [],
		"reasoning": "r"
	}`)})
	svc := newTestService(t, mock)

	answer, _, err := svc.ModelAnswer(context.Background(), 2, "", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"primary endpoint", "effect size", "clinical relevance"}, answer.KeyPoints)
}

func TestScenario_GeneratesAndCaches(t *testing.T) {
	mock := llm.NewMockProvider(cannedScenario())
	svc := newTestService(t, mock)

	scenario, cached, err := svc.Scenario(context.Background(), 2, "data_driven_cardiologist", 0)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 2, scenario.QuestionID)
	require.Equal(t, "Dr. Marcus Webb", scenario.PersonaName)
	require.NotEmpty(t, scenario.OpeningLine)

	_, cached, err = svc.Scenario(context.Background(), 2, "data_driven_cardiologist", 0)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, 1, mock.CallCount())
}

func TestScenario_VariantsGenerateSeparately(t *testing.T) {
	mock := llm.NewMockProvider(cannedScenario(), cannedScenario())
	svc := newTestService(t, mock)

	_, _, err := svc.Scenario(context.Background(), 7, "skeptical_pcp", 0)
	require.NoError(t, err)
	_, cached, err := svc.Scenario(context.Background(), 7, "skeptical_pcp", 1)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 2, mock.CallCount())
	require.Contains(t, mock.Calls[1].Prompt, "Variant 1")
}

func TestUnknownIDs(t *testing.T) {
	svc := newTestService(t, llm.NewMockProvider())

	_, _, err := svc.ModelAnswer(context.Background(), 999, "", 0)
	require.ErrorIs(t, err, ErrUnknownQuestion)

	_, _, err = svc.ModelAnswer(context.Background(), 1, "nobody", 0)
	require.ErrorIs(t, err, ErrUnknownPersona)

	_, _, err = svc.Scenario(context.Background(), 1, "nobody", 0)
	require.ErrorIs(t, err, ErrUnknownPersona)
}
