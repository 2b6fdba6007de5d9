package scoring

import "mslcoach/internal/llm"

// EvaluationSchema defines the JSON schema for response evaluation.
var EvaluationSchema = &llm.Schema{
	Name:        "response-evaluation",
	Description: "Evaluation of an MSL's response to a physician question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"description": "Overall quality score from 0 to 100",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "2-4 sentences of constructive feedback on the response",
			},
			"priorities_covered": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Persona priorities the response addressed",
			},
			"engagement_points_covered": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Engagement tips the response followed",
			},
			"missing_points": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Important points the response missed (at most 6)",
			},
		},
		"required": []any{
			"score", "feedback", "priorities_covered",
			"engagement_points_covered", "missing_points",
		},
		"additionalProperties": false,
	},
}
