package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mslcoach/internal/xp"
)

type progressRepo struct {
	db *sqlx.DB
}

func (r *progressRepo) Read(ctx context.Context, userID string) (*UserProgress, int64, error) {
	var row struct {
		Data    string `db:"data"`
		Version int64  `db:"version"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT data, version FROM user_progress WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewUserProgress(userID), 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read progress: %w", err)
	}

	p := NewUserProgress(userID)
	if err := json.Unmarshal([]byte(row.Data), p); err != nil {
		return nil, 0, fmt.Errorf("decode progress snapshot: %w", err)
	}
	if p.CategoryStats == nil {
		p.CategoryStats = make(map[string]*CategoryStat)
	}
	if p.PersonaStats == nil {
		p.PersonaStats = make(map[string]*CategoryStat)
	}
	// The level curve, not the stored snapshot, owns the level. Recomputing
	// on read keeps old snapshots correct if the thresholds ever change.
	p.Level = xp.LevelOf(p.TotalXP).Level
	return p, row.Version, nil
}

func (r *progressRepo) Write(ctx context.Context, userID string, p *UserProgress, expectedVersion int64) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress snapshot: %w", err)
	}

	if expectedVersion == 0 {
		// First write for this user. A concurrent first write loses on the
		// primary key and surfaces as a version conflict.
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO user_progress (user_id, data, version, updated_at)
			 VALUES (?, ?, 1, CURRENT_TIMESTAMP)
			 ON CONFLICT(user_id) DO NOTHING`,
			userID, string(data))
		if err != nil {
			return fmt.Errorf("insert progress: %w", err)
		}
		return checkConflict(res)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE user_progress
		 SET data = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND version = ?`,
		string(data), userID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return checkConflict(res)
}

func (r *progressRepo) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM user_progress WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

func checkConflict(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}
