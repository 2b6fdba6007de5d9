package artifacts

import "mslcoach/internal/llm"

var modelAnswerSchema = &llm.Schema{
	Name:        "model-answer",
	Description: "Exemplar MSL response to a physician question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"model_answer": map[string]any{
				"type":        "string",
				"description": "A strong MSL response, 200-250 words, evidence-based and professional",
			},
			"key_points": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "3-5 points the response makes, one line each",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "Brief explanation of why this approach works",
			},
		},
		"required":             []any{"model_answer", "key_points", "reasoning"},
		"additionalProperties": false,
	},
}

var scenarioSchema = &llm.Schema{
	Name:        "roleplay-scenario",
	Description: "Roleplay setup an MSL walks into before answering",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"setting": map[string]any{
				"type":        "string",
				"description": "Where and how the conversation happens, 1-2 sentences",
			},
			"physician_mood": map[string]any{
				"type":        "string",
				"description": "The physician's mood going into the exchange, a few words",
			},
			"opening_line": map[string]any{
				"type":        "string",
				"description": "What the physician says first, in their voice",
			},
			"objectives": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 things a strong response should accomplish",
			},
			"hidden_concerns": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 unstated worries driving the physician's question",
			},
		},
		"required": []any{
			"setting", "physician_mood", "opening_line", "objectives", "hidden_concerns",
		},
		"additionalProperties": false,
	},
}
