package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type cacheRepo struct {
	db *sqlx.DB
}

func (r *cacheRepo) Read(ctx context.Context, key string) (*CacheEntry, error) {
	var entry CacheEntry
	var content string
	row := r.db.QueryRowxContext(ctx,
		`SELECT cache_key, kind, question_id, persona_id, variant_seed, content, generated_at
		 FROM content_cache WHERE cache_key = ?`, key)
	err := row.Scan(&entry.Key, &entry.Kind, &entry.QuestionID, &entry.PersonaID,
		&entry.VariantSeed, &content, &entry.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	entry.Content = []byte(content)
	return &entry, nil
}

// Commit inserts the entry if the key is uncommitted. The cache is a
// write-once map: a conflicting insert is reported, never overwritten.
func (r *cacheRepo) Commit(ctx context.Context, entry *CacheEntry) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO content_cache
		 (cache_key, kind, question_id, persona_id, variant_seed, content, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO NOTHING`,
		entry.Key, entry.Kind, entry.QuestionID, entry.PersonaID,
		entry.VariantSeed, string(entry.Content), entry.GeneratedAt)
	if err != nil {
		return fmt.Errorf("commit cache entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrAlreadyCommitted
	}
	return nil
}
