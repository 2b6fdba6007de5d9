package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProgressRepo_ReadMissingReturnsZeroState(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()

	p, version, err := repo.Read(context.Background(), "u1")
	require.NoError(t, err)
	require.EqualValues(t, 0, version)
	require.Equal(t, "u1", p.UserID)
	require.Equal(t, 0, p.TotalXP)
	require.Equal(t, 1, p.Level)
	require.Empty(t, p.Unlocked)
}

func TestProgressRepo_WriteReadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	p := NewUserProgress("u1")
	p.TotalXP = 92
	p.CurrentStreak = 1
	p.LongestStreak = 1
	p.LastPracticeDay = "2024-01-10"
	p.TotalSessions = 1
	p.Unlocked = []string{"first_session"}
	p.CategoryStats["Cost & Value"] = &CategoryStat{Count: 1, TotalScore: 90, AverageScore: 90}

	require.NoError(t, repo.Write(ctx, "u1", p, 0))

	got, version, err := repo.Read(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 1, version)
	require.Equal(t, 92, got.TotalXP)
	require.Equal(t, []string{"first_session"}, got.Unlocked)
	require.Equal(t, 1, got.CategoryStats["Cost & Value"].Count)
}

func TestProgressRepo_VersionConflict(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	p := NewUserProgress("u1")
	require.NoError(t, repo.Write(ctx, "u1", p, 0))

	// Stale expected version.
	err := repo.Write(ctx, "u1", p, 0)
	require.ErrorIs(t, err, ErrVersionConflict)

	err = repo.Write(ctx, "u1", p, 7)
	require.ErrorIs(t, err, ErrVersionConflict)

	// Correct version succeeds and bumps.
	require.NoError(t, repo.Write(ctx, "u1", p, 1))
	_, version, err := repo.Read(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 2, version)
}

func TestProgressRepo_ReadRecomputesLevel(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	// A snapshot carrying a stale level must not be served as-is.
	p := NewUserProgress("u1")
	p.TotalXP = 300
	p.Level = 1
	require.NoError(t, repo.Write(ctx, "u1", p, 0))

	got, _, err := repo.Read(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 3, got.Level, "level derives from total XP on every read")
}

func TestProgressRepo_Delete(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	p := NewUserProgress("u1")
	p.TotalXP = 50
	require.NoError(t, repo.Write(ctx, "u1", p, 0))

	require.NoError(t, repo.Delete(ctx, "u1"))

	got, version, err := repo.Read(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 0, version)
	require.Equal(t, 0, got.TotalXP)

	// Deleting an absent user is a no-op.
	require.NoError(t, repo.Delete(ctx, "ghost"))
}

func TestCacheRepo_WriteOnce(t *testing.T) {
	s := openTestStore(t)
	repo := s.CacheRepo()
	ctx := context.Background()

	_, err := repo.Read(ctx, "model-answer:q3:skeptic:v0")
	require.ErrorIs(t, err, ErrCacheMiss)

	entry := &CacheEntry{
		Key:         "model-answer:q3:skeptic:v0",
		Kind:        "model-answer",
		QuestionID:  3,
		PersonaID:   "skeptic",
		VariantSeed: 0,
		Content:     json.RawMessage(`{"model_answer":"..."}`),
		GeneratedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Commit(ctx, entry))

	// Second commit for the same key is rejected, content untouched.
	dupe := *entry
	dupe.Content = json.RawMessage(`{"model_answer":"different"}`)
	require.ErrorIs(t, repo.Commit(ctx, &dupe), ErrAlreadyCommitted)

	got, err := repo.Read(ctx, entry.Key)
	require.NoError(t, err)
	require.JSONEq(t, `{"model_answer":"..."}`, string(got.Content))
}

func TestSessionRepo_AppendAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"s1", "s2"} {
		rec := &SessionRecord{
			ID:               id,
			UserID:           "u1",
			StartedAt:        now.Add(time.Duration(i) * time.Hour),
			EndedAt:          now.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			InteractionCount: 2,
			XPDelta:          40,
			Data:             json.RawMessage(`[]`),
		}
		require.NoError(t, repo.Append(ctx, rec))
	}

	recs, err := repo.RecentByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "s2", recs[0].ID) // newest first

	recs, err = repo.RecentByUser(ctx, "other", 10)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestSessionRepo_Get(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	rec := &SessionRecord{
		ID:               "s1",
		UserID:           "u1",
		StartedAt:        now,
		EndedAt:          now.Add(10 * time.Minute),
		InteractionCount: 1,
		XPDelta:          42,
		Data:             json.RawMessage(`[{"xp_delta":42}]`),
	}
	require.NoError(t, repo.Append(ctx, rec))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, 42, got.XPDelta)
	require.JSONEq(t, `[{"xp_delta":42}]`, string(got.Data))
}

func TestEventRepo_AppendAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:     "mock",
		Model:        "mock",
		Purpose:      "evaluation",
		InputTokens:  120,
		OutputTokens: 80,
		LatencyMs:    412,
		Success:      true,
	}))

	events, err := repo.RecentLLMRequests(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "evaluation", events[0].Purpose)
	require.True(t, events[0].Success)
}
