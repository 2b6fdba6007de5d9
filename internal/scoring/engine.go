package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mslcoach/internal/llm"
)

// Config tunes the evaluation oracle call.
type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds a single evaluation, including provider retries.
	Timeout time.Duration
}

// DefaultConfig returns evaluation defaults. Temperature stays low so the
// same response scores consistently across attempts.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.2,
		Timeout:     45 * time.Second,
	}
}

// Engine evaluates submitted responses through the LLM oracle and
// normalizes the result. It is stateless: the only side effect of Score
// is the oracle call itself.
type Engine struct {
	provider llm.Provider
	cfg      Config
}

// NewEngine creates a scoring engine.
func NewEngine(provider llm.Provider, cfg Config) *Engine {
	return &Engine{provider: provider, cfg: cfg}
}

// Score evaluates one submitted response against the rubric. The response
// text must be non-empty. Oracle failures and malformed output come back
// as ErrEvaluationFailed.
func (e *Engine) Score(ctx context.Context, responseText string, rubric Rubric) (*ScoreResult, error) {
	if strings.TrimSpace(responseText) == "" {
		return nil, fmt.Errorf("response text is empty")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluation)
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System:      evaluationSystemPrompt,
		Prompt:      buildEvaluationUserMessage(responseText, rubric),
		Schema:      EvaluationSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluationFailed, err)
	}

	var out ScoreResult
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("%w: parse evaluation: %v", ErrEvaluationFailed, err)
	}

	// Clamp and derive: the oracle proposes a score, the engine owns the
	// bounds and the tier.
	if out.Score < 0 {
		out.Score = 0
	}
	if out.Score > 100 {
		out.Score = 100
	}
	out.Tier = TierFor(out.Score)

	return &out, nil
}
