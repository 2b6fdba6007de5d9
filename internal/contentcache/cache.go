package contentcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"mslcoach/internal/store"
)

// Generator produces the content for a missing cache key. It is invoked
// at most once per key across concurrent callers; its result is committed
// to the durable store before anyone sees it.
type Generator func(ctx context.Context) (json.RawMessage, error)

// Cache is the read-through, write-once artifact cache. A hit returns the
// committed content; a miss runs the generator exactly once (concurrent
// misses on the same key collapse into one in-flight call) and commits
// the result. Generator failures leave the key uncommitted so a later
// request can retry.
type Cache struct {
	repo  store.CacheRepo
	group singleflight.Group
	log   *zap.Logger
}

// New creates a Cache over the given repo. A nil logger disables logging.
func New(repo store.CacheRepo, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{repo: repo, log: log}
}

// Get returns the committed content for key, or store.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key Key) (json.RawMessage, error) {
	entry, err := c.repo.Read(ctx, key.String())
	if err != nil {
		return nil, err
	}
	return entry.Content, nil
}

type flightResult struct {
	content json.RawMessage
	cached  bool
}

// GetOrGenerate returns the content for key, generating and committing it
// on a miss. The boolean reports whether the content was already cached.
func (c *Cache) GetOrGenerate(ctx context.Context, key Key, generate Generator) (json.RawMessage, bool, error) {
	ks := key.String()

	entry, err := c.repo.Read(ctx, ks)
	if err == nil {
		return entry.Content, true, nil
	}
	if !errors.Is(err, store.ErrCacheMiss) {
		return nil, false, err
	}

	v, err, shared := c.group.Do(ks, func() (any, error) {
		return c.generateAndCommit(ctx, key, ks, generate)
	})
	if err != nil {
		return nil, false, err
	}

	r := v.(flightResult)
	// Followers of a shared flight get content that is now committed.
	return r.content, r.cached || shared, nil
}

func (c *Cache) generateAndCommit(ctx context.Context, key Key, ks string, generate Generator) (flightResult, error) {
	// A racing writer on another process may have committed between the
	// caller's read and winning the flight.
	entry, err := c.repo.Read(ctx, ks)
	if err == nil {
		return flightResult{content: entry.Content, cached: true}, nil
	}
	if !errors.Is(err, store.ErrCacheMiss) {
		return flightResult{}, err
	}

	start := time.Now()
	content, err := generate(ctx)
	if err != nil {
		return flightResult{}, fmt.Errorf("generate %s: %w", ks, err)
	}

	err = c.repo.Commit(ctx, &store.CacheEntry{
		Key:         ks,
		Kind:        string(key.Kind),
		QuestionID:  key.QuestionID,
		PersonaID:   key.PersonaID,
		VariantSeed: key.VariantSeed,
		Content:     content,
		GeneratedAt: time.Now().UTC(),
	})
	if errors.Is(err, store.ErrAlreadyCommitted) {
		// Lost the commit race; the committed row wins.
		committed, rerr := c.repo.Read(ctx, ks)
		if rerr != nil {
			return flightResult{}, fmt.Errorf("read after commit race on %s: %w", ks, rerr)
		}
		return flightResult{content: committed.Content, cached: true}, nil
	}
	if err != nil {
		return flightResult{}, err
	}

	c.log.Info("cache entry generated",
		zap.String("key", ks),
		zap.Int("bytes", len(content)),
		zap.Duration("took", time.Since(start)))
	return flightResult{content: content}, nil
}
