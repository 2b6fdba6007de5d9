package llm

import (
	"context"
	"encoding/json"
)

// Provider is the oracle behind every AI feature of the engine: response
// evaluation, model-answer generation, and scenario generation. All three
// are single-shot calls that must come back as JSON matching a schema;
// there is no conversation state to carry between calls.
type Provider interface {
	// Generate sends one prompt to the model. When the request carries a
	// Schema, the provider asks for structured output and validates the
	// returned JSON against it before handing it back.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured
	// to use.
	ModelID() string
}

// Request is one oracle call. Evaluation and artifact generation are
// both single-turn: a system role description plus one user prompt.
type Request struct {
	// System sets the model's role, e.g. "You are a medical affairs
	// trainer evaluating an MSL's response."
	System string

	// Prompt is the user message: the rubric and response text for
	// evaluation, or the question and persona context for generation.
	Prompt string

	// Schema, when set, is the JSON Schema the output must conform to.
	// When nil the response Content is the raw text.
	Schema *Schema

	// MaxTokens caps the response length. A truncated structured response
	// is unusable, so hitting the cap is surfaced as ErrMaxTokensExceeded.
	MaxTokens int

	// Temperature controls sampling randomness in [0, 1]. Evaluation
	// runs at 0 for repeatability; scenario generation runs warmer.
	Temperature float64
}

// Schema names a JSON Schema the oracle output must satisfy.
type Schema struct {
	// Name identifies the schema to the provider's structured output
	// mechanism. Kebab-case, e.g. "response-evaluation".
	Name string

	// Description tells the model what the structure represents.
	Description string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Response is the oracle's validated output.
type Response struct {
	// Content is the generated JSON when a Schema was requested, or the
	// raw text otherwise.
	Content json.RawMessage

	// Usage reports token consumption, recorded per call in the event log.
	Usage Usage

	// Model is the concrete model that served the call.
	Model string
}

// Usage tracks token consumption for a single call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
