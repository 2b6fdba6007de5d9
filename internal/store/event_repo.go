package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type eventRepo struct {
	db *sqlx.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO llm_requests
		 (provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		data.Provider, data.Model, data.Purpose, data.InputTokens,
		data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage)
	if err != nil {
		return fmt.Errorf("append llm event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequestEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []LLMRequestEvent
	err := r.db.SelectContext(ctx, &events,
		`SELECT id, provider, model, purpose, input_tokens, output_tokens,
		        latency_ms, success, error_message, created_at
		 FROM llm_requests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	return events, nil
}
