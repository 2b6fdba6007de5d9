package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type sessionRepo struct {
	db *sqlx.DB
}

func (r *sessionRepo) Append(ctx context.Context, rec *SessionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions
		 (id, user_id, started_at, ended_at, interaction_count, xp_delta, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.StartedAt, rec.EndedAt,
		rec.InteractionCount, rec.XPDelta, string(rec.Data))
	if err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*SessionRecord, error) {
	var rec SessionRecord
	var data string
	err := r.db.QueryRowxContext(ctx,
		`SELECT id, user_id, started_at, ended_at, interaction_count, xp_delta, data
		 FROM sessions WHERE id = ?`, id).
		Scan(&rec.ID, &rec.UserID, &rec.StartedAt, &rec.EndedAt,
			&rec.InteractionCount, &rec.XPDelta, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	rec.Data = []byte(data)
	return &rec, nil
}

func (r *sessionRepo) RecentByUser(ctx context.Context, userID string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryxContext(ctx,
		`SELECT id, user_id, started_at, ended_at, interaction_count, xp_delta, data
		 FROM sessions WHERE user_id = ?
		 ORDER BY ended_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var data string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.StartedAt, &rec.EndedAt,
			&rec.InteractionCount, &rec.XPDelta, &data); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.Data = []byte(data)
		out = append(out, rec)
	}
	return out, rows.Err()
}
