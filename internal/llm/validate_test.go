package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var testSchema = &Schema{
	Name:        "score-test",
	Description: "A numeric score with feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":    map[string]any{"type": "number"},
			"feedback": map[string]any{"type": "string"},
		},
		"required":             []any{"score", "feedback"},
		"additionalProperties": false,
	},
}

func TestValidateResponse_Valid(t *testing.T) {
	raw := json.RawMessage(`{"score": 85, "feedback": "solid coverage of the data"}`)
	if err := validateResponse(testSchema, raw); err != nil {
		t.Errorf("validateResponse() error = %v, want nil", err)
	}
}

func TestValidateResponse_MissingRequired(t *testing.T) {
	raw := json.RawMessage(`{"score": 85}`)
	err := validateResponse(testSchema, raw)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Errorf("validateResponse() error = %v, want ErrInvalidResponse", err)
	}
}

func TestValidateResponse_MalformedJSON(t *testing.T) {
	raw := json.RawMessage(`{"score": `)
	err := validateResponse(testSchema, raw)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Errorf("validateResponse() error = %v, want ErrInvalidResponse", err)
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Errorf("validateResponse(nil) error = %v, want nil", err)
	}
}
