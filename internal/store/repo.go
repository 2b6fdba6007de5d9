package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrVersionConflict is returned by ProgressRepo.Write when the stored
// snapshot's version no longer matches the expected one. The caller must
// re-read and re-fold against the fresh snapshot.
var ErrVersionConflict = errors.New("progress version conflict")

// ErrAlreadyCommitted is returned by CacheRepo.Commit when another writer
// committed the key first. The caller should read the committed value.
var ErrAlreadyCommitted = errors.New("cache entry already committed")

// ErrCacheMiss is returned by CacheRepo.Read when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ErrSessionNotFound is returned by SessionRepo.Get when no record exists
// for the session id.
var ErrSessionNotFound = errors.New("session not found")

// CategoryStat is a running average over scored interactions, kept both
// per question category and per physician persona.
type CategoryStat struct {
	Count        int     `json:"count"`
	TotalScore   float64 `json:"total_score"`
	AverageScore float64 `json:"average_score"`
}

// UserProgress is the durable per-user aggregate. It is mutated only by
// the progress aggregator, once per completed session, and persisted as a
// single versioned snapshot.
type UserProgress struct {
	UserID            string                   `json:"user_id"`
	TotalXP           int                      `json:"total_xp"`
	Level             int                      `json:"level"`
	CurrentStreak     int                      `json:"current_streak"`
	LongestStreak     int                      `json:"longest_streak"`
	LastPracticeDay   string                   `json:"last_practice_day,omitempty"` // UTC calendar day, "2006-01-02"
	TotalSessions     int                      `json:"total_sessions"`
	TotalInteractions int                      `json:"total_interactions"`
	TotalScore        float64                  `json:"total_score"`
	AverageScore      float64                  `json:"average_score"`
	BestScore         float64                  `json:"best_score"`
	CategoryStats     map[string]*CategoryStat `json:"category_stats,omitempty"`
	PersonaStats      map[string]*CategoryStat `json:"persona_stats,omitempty"`
	Unlocked          []string                 `json:"unlocked,omitempty"`
}

// NewUserProgress returns the zero-state aggregate for a user who has
// never practiced: no XP, level 1, streak 0, nothing unlocked.
func NewUserProgress(userID string) *UserProgress {
	return &UserProgress{
		UserID:        userID,
		Level:         1,
		CategoryStats: make(map[string]*CategoryStat),
		PersonaStats:  make(map[string]*CategoryStat),
	}
}

// Clone returns a deep copy. The aggregator folds into a copy so a failed
// or conflicted write never leaves a half-mutated snapshot behind.
func (p *UserProgress) Clone() *UserProgress {
	cp := *p
	cp.CategoryStats = make(map[string]*CategoryStat, len(p.CategoryStats))
	for k, v := range p.CategoryStats {
		s := *v
		cp.CategoryStats[k] = &s
	}
	cp.PersonaStats = make(map[string]*CategoryStat, len(p.PersonaStats))
	for k, v := range p.PersonaStats {
		s := *v
		cp.PersonaStats[k] = &s
	}
	cp.Unlocked = append([]string(nil), p.Unlocked...)
	return &cp
}

// HasUnlocked reports whether the achievement id is already unlocked.
func (p *UserProgress) HasUnlocked(id string) bool {
	for _, u := range p.Unlocked {
		if u == id {
			return true
		}
	}
	return false
}

// ProgressRepo persists user progress snapshots with optimistic versioning.
type ProgressRepo interface {
	// Read returns the snapshot and its version. For a user with no
	// stored snapshot it returns the zero-state aggregate and version 0.
	Read(ctx context.Context, userID string) (*UserProgress, int64, error)

	// Write stores the snapshot if the stored version still equals
	// expectedVersion (0 means "no row yet"). Returns ErrVersionConflict
	// when another writer got there first.
	Write(ctx context.Context, userID string, p *UserProgress, expectedVersion int64) error

	// Delete removes the user's snapshot. Deleting a missing user is a
	// no-op.
	Delete(ctx context.Context, userID string) error
}

// CacheEntry is one committed AI-generated artifact. Entries are immutable
// once committed; the key is never regenerated.
type CacheEntry struct {
	Key         string          `db:"cache_key"`
	Kind        string          `db:"kind"`
	QuestionID  int             `db:"question_id"`
	PersonaID   string          `db:"persona_id"`
	VariantSeed int             `db:"variant_seed"`
	Content     json.RawMessage `db:"content"`
	GeneratedAt time.Time       `db:"generated_at"`
}

// CacheRepo is the durable write-once artifact store.
type CacheRepo interface {
	Read(ctx context.Context, key string) (*CacheEntry, error)
	Commit(ctx context.Context, entry *CacheEntry) error
}

// SessionRecord captures one processed practice session for history views.
type SessionRecord struct {
	ID               string          `db:"id" json:"id"`
	UserID           string          `db:"user_id" json:"user_id"`
	StartedAt        time.Time       `db:"started_at" json:"started_at"`
	EndedAt          time.Time       `db:"ended_at" json:"ended_at"`
	InteractionCount int             `db:"interaction_count" json:"interaction_count"`
	XPDelta          int             `db:"xp_delta" json:"xp_delta"`
	Data             json.RawMessage `db:"data" json:"data"`
}

// SessionRepo appends processed session records. Records double as the
// processed-set for submission dedupe: a session id with a stored record
// has already been applied to progress.
type SessionRepo interface {
	Append(ctx context.Context, rec *SessionRecord) error

	// Get returns the record for a session id, or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*SessionRecord, error)

	RecentByUser(ctx context.Context, userID string, limit int) ([]SessionRecord, error)
}

// LLMRequestEventData captures the data for a single oracle call event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEvent is a stored oracle call event.
type LLMRequestEvent struct {
	ID           int64     `db:"id"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Purpose      string    `db:"purpose"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	ErrorMessage string    `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
}

// EventRepo provides append access to oracle call events.
type EventRepo interface {
	// AppendLLMRequest records an oracle call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// RecentLLMRequests returns the most recent events, newest first.
	RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequestEvent, error)
}
