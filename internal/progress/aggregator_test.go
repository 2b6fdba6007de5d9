package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mslcoach/internal/bank"
	"mslcoach/internal/scoring"
	"mslcoach/internal/store"
)

// stubScorer returns canned scores in order, without an oracle.
type stubScorer struct {
	scores []float64
	idx    int
	err    error
}

func (s *stubScorer) Score(_ context.Context, _ string, _ scoring.Rubric) (*scoring.ScoreResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	score := s.scores[s.idx%len(s.scores)]
	s.idx++
	return &scoring.ScoreResult{
		Score:    score,
		Tier:     scoring.TierFor(score),
		Feedback: "stub",
	}, nil
}

func newTestAggregator(t *testing.T, scorer Scorer) (*Aggregator, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	b, err := bank.Load("", "")
	require.NoError(t, err)

	return NewAggregator(scorer, s.ProgressRepo(), s.SessionRepo(), b, nil), s
}

func highDifficultySession(userID string) Session {
	// Question 4 is difficulty "high" and relevant to the oncologist.
	return Session{
		UserID:    userID,
		StartedAt: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2026, 3, 10, 14, 20, 0, 0, time.UTC),
		Interactions: []Interaction{
			{QuestionID: 4, PersonaID: "time_pressed_oncologist", ResponseText: "The one reason: ..."},
		},
	}
}

func TestSubmitSession_FirstSession(t *testing.T) {
	agg, s := newTestAggregator(t, &stubScorer{scores: []float64{90}})

	result, err := agg.SubmitSession(context.Background(), highDifficultySession("u1"))
	require.NoError(t, err)

	// High difficulty at score 90: 30 * 1.4 = 42, plus the 50 XP
	// first-session bonus.
	require.Equal(t, 92, result.XPDelta)
	require.Equal(t, 92, result.Progress.TotalXP)
	require.Equal(t, 1, result.Progress.Level)
	require.Equal(t, 1, result.Progress.CurrentStreak)
	require.Equal(t, 1, result.Progress.LongestStreak)
	require.Equal(t, "2026-03-10", result.Progress.LastPracticeDay)
	require.Equal(t, 1, result.Progress.TotalSessions)
	require.Equal(t, 1, result.Progress.TotalInteractions)
	require.InDelta(t, 90, result.Progress.AverageScore, 0.001)
	require.InDelta(t, 90, result.Progress.BestScore, 0.001)
	require.InDelta(t, 90, result.SessionAverage, 0.001)

	require.Len(t, result.NewlyUnlocked, 1)
	require.Equal(t, "first_session", result.NewlyUnlocked[0].ID)
	require.Equal(t, []string{"first_session"}, result.Progress.Unlocked)

	// The committed snapshot matches what was returned.
	stored, version, err := s.ProgressRepo().Read(context.Background(), "u1")
	require.NoError(t, err)
	require.EqualValues(t, 1, version)
	require.Equal(t, result.Progress.TotalXP, stored.TotalXP)

	// The session record was appended.
	recs, err := s.SessionRepo().RecentByUser(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, 92, recs[0].XPDelta)
	require.Equal(t, 1, recs[0].InteractionCount)
}

func TestSubmitSession_PerfectScoreCrossesLevel(t *testing.T) {
	agg, _ := newTestAggregator(t, &stubScorer{scores: []float64{95}})

	result, err := agg.SubmitSession(context.Background(), highDifficultySession("u1"))
	require.NoError(t, err)

	// 30 * 1.45 = 43.5 rounds to 44, plus first_session 50 and
	// perfect_score 200.
	require.Equal(t, 294, result.XPDelta)
	require.Equal(t, 2, result.Progress.Level)
	require.Equal(t, 1, result.LevelsGained)
	ids := make([]string, 0, len(result.NewlyUnlocked))
	for _, a := range result.NewlyUnlocked {
		ids = append(ids, a.ID)
	}
	require.Equal(t, []string{"first_session", "perfect_score"}, ids)
}

func TestSubmitSession_SameDayKeepsStreak(t *testing.T) {
	agg, _ := newTestAggregator(t, &stubScorer{scores: []float64{70}})

	_, err := agg.SubmitSession(context.Background(), highDifficultySession("u1"))
	require.NoError(t, err)

	second := highDifficultySession("u1")
	second.EndedAt = second.EndedAt.Add(3 * time.Hour)
	result, err := agg.SubmitSession(context.Background(), second)
	require.NoError(t, err)

	require.Equal(t, 1, result.Progress.CurrentStreak)
	require.Equal(t, 2, result.Progress.TotalSessions)
	require.Empty(t, result.NewlyUnlocked, "first_session never unlocks twice")
}

func TestSubmitSession_NextDayExtendsStreak(t *testing.T) {
	agg, _ := newTestAggregator(t, &stubScorer{scores: []float64{70}})

	_, err := agg.SubmitSession(context.Background(), highDifficultySession("u1"))
	require.NoError(t, err)

	next := highDifficultySession("u1")
	next.EndedAt = next.EndedAt.AddDate(0, 0, 1)
	result, err := agg.SubmitSession(context.Background(), next)
	require.NoError(t, err)
	require.Equal(t, 2, result.Progress.CurrentStreak)

	gap := highDifficultySession("u1")
	gap.EndedAt = gap.EndedAt.AddDate(0, 0, 5)
	result, err = agg.SubmitSession(context.Background(), gap)
	require.NoError(t, err)
	require.Equal(t, 1, result.Progress.CurrentStreak, "gap resets the streak")
	require.Equal(t, 2, result.Progress.LongestStreak)
}

func TestSubmitSession_ResubmitIsIdempotent(t *testing.T) {
	scorer := &stubScorer{scores: []float64{90}}
	agg, s := newTestAggregator(t, scorer)

	session := highDifficultySession("u1")
	session.ID = "sess-1"

	first, err := agg.SubmitSession(context.Background(), session)
	require.NoError(t, err)
	require.Equal(t, 92, first.XPDelta)
	require.Equal(t, 92, first.Progress.TotalXP)

	// A retried submit of the same session returns the committed result
	// and must not apply XP or stats a second time.
	again, err := agg.SubmitSession(context.Background(), session)
	require.NoError(t, err)
	require.True(t, again.AlreadyProcessed)
	require.Equal(t, 92, again.XPDelta)
	require.Equal(t, 92, again.Progress.TotalXP)
	require.Equal(t, 1, again.Progress.TotalSessions)
	require.Len(t, again.Scored, 1)
	require.InDelta(t, 90, again.SessionAverage, 0.001)
	require.Equal(t, 1, scorer.idx, "resubmission never re-scores")

	stored, version, err := s.ProgressRepo().Read(context.Background(), "u1")
	require.NoError(t, err)
	require.EqualValues(t, 1, version, "snapshot written exactly once")
	require.Equal(t, 92, stored.TotalXP)
	require.Equal(t, 1, stored.TotalSessions)

	recs, err := s.SessionRepo().RecentByUser(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestSubmitSession_ScoringFailureLeavesProgressUnchanged(t *testing.T) {
	agg, s := newTestAggregator(t, &stubScorer{err: scoring.ErrEvaluationFailed})

	_, err := agg.SubmitSession(context.Background(), highDifficultySession("u1"))
	require.ErrorIs(t, err, ErrSessionProcessing)

	stored, version, err := s.ProgressRepo().Read(context.Background(), "u1")
	require.NoError(t, err)
	require.EqualValues(t, 0, version, "no snapshot written")
	require.Equal(t, 0, stored.TotalXP)
	require.Equal(t, 0, stored.TotalSessions)
}

func TestSubmitSession_Validation(t *testing.T) {
	agg, _ := newTestAggregator(t, &stubScorer{scores: []float64{70}})
	ctx := context.Background()

	_, err := agg.SubmitSession(ctx, Session{UserID: "u1"})
	require.ErrorIs(t, err, ErrEmptySession)
	require.ErrorIs(t, err, ErrInvalidSession)
	require.ErrorIs(t, err, ErrSessionProcessing)

	bad := highDifficultySession("u1")
	bad.Interactions[0].QuestionID = 999
	_, err = agg.SubmitSession(ctx, bad)
	require.ErrorIs(t, err, ErrInvalidSession)

	bad = highDifficultySession("u1")
	bad.Interactions[0].PersonaID = "nobody"
	_, err = agg.SubmitSession(ctx, bad)
	require.ErrorIs(t, err, ErrSessionProcessing)

	bad = highDifficultySession("u1")
	bad.Interactions[0].ResponseText = "   "
	_, err = agg.SubmitSession(ctx, bad)
	require.ErrorIs(t, err, ErrSessionProcessing)
}

// brokenRepo fails every write with a non-conflict error.
type brokenRepo struct {
	store.ProgressRepo
}

func (r *brokenRepo) Write(context.Context, string, *store.UserProgress, int64) error {
	return errors.New("disk I/O error")
}

func TestSubmitSession_WriteFailureLeavesProgressUnchanged(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	b, err := bank.Load("", "")
	require.NoError(t, err)

	repo := &brokenRepo{ProgressRepo: s.ProgressRepo()}
	agg := NewAggregator(&stubScorer{scores: []float64{80}}, repo, s.SessionRepo(), b, nil)

	_, err = agg.SubmitSession(context.Background(), highDifficultySession("u1"))
	require.ErrorIs(t, err, ErrSessionProcessing)
	require.NotErrorIs(t, err, store.ErrVersionConflict)

	stored, version, err := s.ProgressRepo().Read(context.Background(), "u1")
	require.NoError(t, err)
	require.EqualValues(t, 0, version, "no snapshot written")
	require.Equal(t, 0, stored.TotalXP)
	require.Equal(t, 0, stored.TotalSessions)

	recs, err := s.SessionRepo().RecentByUser(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Empty(t, recs, "no session record appended")
}

// conflictingRepo forces a version conflict on the first n writes.
type conflictingRepo struct {
	store.ProgressRepo
	remaining int
}

func (r *conflictingRepo) Write(ctx context.Context, userID string, p *store.UserProgress, expectedVersion int64) error {
	if r.remaining > 0 {
		r.remaining--
		return store.ErrVersionConflict
	}
	return r.ProgressRepo.Write(ctx, userID, p, expectedVersion)
}

func TestSubmitSession_RetriesVersionConflict(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	b, err := bank.Load("", "")
	require.NoError(t, err)

	repo := &conflictingRepo{ProgressRepo: s.ProgressRepo(), remaining: 2}
	agg := NewAggregator(&stubScorer{scores: []float64{80}}, repo, s.SessionRepo(), b, nil)

	result, err := agg.SubmitSession(context.Background(), highDifficultySession("u1"))
	require.NoError(t, err)
	require.Equal(t, 1, result.Progress.TotalSessions)
}

func TestSubmitSession_GivesUpAfterMaxConflicts(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	b, err := bank.Load("", "")
	require.NoError(t, err)

	repo := &conflictingRepo{ProgressRepo: s.ProgressRepo(), remaining: maxWriteRetries}
	agg := NewAggregator(&stubScorer{scores: []float64{80}}, repo, s.SessionRepo(), b, nil)

	_, err = agg.SubmitSession(context.Background(), highDifficultySession("u1"))
	require.ErrorIs(t, err, ErrSessionProcessing)
}

func TestSubmitSession_CategoryAndPersonaStats(t *testing.T) {
	agg, _ := newTestAggregator(t, &stubScorer{scores: []float64{80, 60}})

	session := Session{
		UserID:  "u1",
		EndedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Interactions: []Interaction{
			{QuestionID: 1, PersonaID: "skeptical_pcp", ResponseText: "value story"},
			{QuestionID: 2, PersonaID: "data_driven_cardiologist", ResponseText: "endpoint walkthrough"},
		},
	}

	result, err := agg.SubmitSession(context.Background(), session)
	require.NoError(t, err)

	p := result.Progress
	require.Equal(t, 2, p.TotalInteractions)
	require.InDelta(t, 70, p.AverageScore, 0.001)
	require.Len(t, p.CategoryStats, 2)
	require.Len(t, p.PersonaStats, 2)

	costStat := p.CategoryStats["Cost & Value"]
	require.NotNil(t, costStat)
	require.Equal(t, 1, costStat.Count)
	require.InDelta(t, 80, costStat.AverageScore, 0.001)

	pcpStat := p.PersonaStats["skeptical_pcp"]
	require.NotNil(t, pcpStat)
	require.InDelta(t, 80, pcpStat.AverageScore, 0.001)
}
