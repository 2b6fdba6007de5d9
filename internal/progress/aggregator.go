package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mslcoach/internal/achievements"
	"mslcoach/internal/bank"
	"mslcoach/internal/scoring"
	"mslcoach/internal/store"
	"mslcoach/internal/streak"
	"mslcoach/internal/xp"
)

// maxWriteRetries bounds the optimistic write loop. Conflicts are rare
// (same user, concurrent submissions), so a handful of retries is plenty.
const maxWriteRetries = 5

// Scorer evaluates one response against a rubric. Satisfied by
// scoring.Engine; a test double stands in for it in tests.
type Scorer interface {
	Score(ctx context.Context, responseText string, rubric scoring.Rubric) (*scoring.ScoreResult, error)
}

// Aggregator folds completed sessions into durable per-user progress.
// All mutation of UserProgress happens here and nowhere else.
type Aggregator struct {
	scorer   Scorer
	progress store.ProgressRepo
	sessions store.SessionRepo
	bank     *bank.Bank
	log      *zap.Logger
	now      func() time.Time
}

// NewAggregator creates a session aggregator. A nil logger disables logging.
func NewAggregator(scorer Scorer, progress store.ProgressRepo, sessions store.SessionRepo, b *bank.Bank, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		scorer:   scorer,
		progress: progress,
		sessions: sessions,
		bank:     b,
		log:      log,
		now:      time.Now,
	}
}

// SubmitSession scores every interaction, then applies the whole session
// to the user's progress in one atomic snapshot write. On any error the
// stored progress is unchanged and the session can be resubmitted.
//
// Submission is idempotent on the session id: resubmitting a processed
// session returns its committed result without re-scoring or applying
// its deltas again.
//
// Scoring runs before the first snapshot read so slow oracle calls never
// sit inside the read-fold-write window.
func (a *Aggregator) SubmitSession(ctx context.Context, session Session) (*SubmitResult, error) {
	if err := a.validate(&session); err != nil {
		return nil, err
	}

	// Cheap check up front so a resubmission never pays for oracle calls.
	if dup, err := a.priorResult(ctx, session); dup != nil || err != nil {
		return dup, err
	}

	scored, err := a.scoreAll(ctx, session)
	if err != nil {
		return nil, err
	}

	sessionXP := 0
	sessionTotal := 0.0
	for _, si := range scored {
		sessionXP += si.XPDelta
		sessionTotal += si.Result.Score
	}

	closeDay := streak.DayOf(session.EndedAt)

	var (
		snapshot *store.UserProgress
		newly    []achievements.Achievement
	)
	for attempt := 0; ; attempt++ {
		// Re-check inside the versioned window: a concurrent submit of the
		// same session may have committed between scoring and this write.
		if dup, err := a.priorResult(ctx, session); dup != nil || err != nil {
			return dup, err
		}

		current, version, err := a.progress.Read(ctx, session.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: read progress: %v", ErrSessionProcessing, err)
		}

		work := current.Clone()
		a.fold(work, scored, closeDay)
		newly = achievements.Evaluate(work)
		for _, ach := range newly {
			work.Unlocked = append(work.Unlocked, ach.ID)
			work.TotalXP += ach.BonusXP
		}
		work.Level = xp.LevelOf(work.TotalXP).Level

		err = a.progress.Write(ctx, session.UserID, work, version)
		if err == nil {
			snapshot = work
			break
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: write progress: %v", ErrSessionProcessing, err)
		}
		if attempt+1 >= maxWriteRetries {
			return nil, fmt.Errorf("%w: version conflict persisted after %d attempts", ErrSessionProcessing, maxWriteRetries)
		}
		a.log.Debug("progress version conflict, retrying",
			zap.String("user_id", session.UserID),
			zap.Int("attempt", attempt+1))
	}

	levelsGained := snapshot.Level - xp.LevelOf(snapshot.TotalXP-(sessionXP+bonusXP(newly))).Level
	result := &SubmitResult{
		Progress:       snapshot,
		Scored:         scored,
		XPDelta:        sessionXP + bonusXP(newly),
		NewlyUnlocked:  newly,
		LevelsGained:   levelsGained,
		SessionAverage: sessionTotal / float64(len(scored)),
	}

	a.appendRecord(ctx, session, result)

	a.log.Info("session processed",
		zap.String("user_id", session.UserID),
		zap.String("session_id", session.ID),
		zap.Int("interactions", len(scored)),
		zap.Int("xp_delta", result.XPDelta),
		zap.Int("level", snapshot.Level),
		zap.Int("streak", snapshot.CurrentStreak),
		zap.Int("unlocked", len(newly)))

	return result, nil
}

// priorResult returns the committed result for a session id that was
// already processed, or nil when the id is new. The stored session record
// is the processed-set: its presence means the deltas are already folded
// into the snapshot.
func (a *Aggregator) priorResult(ctx context.Context, session Session) (*SubmitResult, error) {
	if a.sessions == nil {
		return nil, nil
	}
	rec, err := a.sessions.Get(ctx, session.ID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: look up session: %v", ErrSessionProcessing, err)
	}

	var scored []ScoredInteraction
	if err := json.Unmarshal(rec.Data, &scored); err != nil {
		return nil, fmt.Errorf("%w: decode session record %s: %v", ErrSessionProcessing, rec.ID, err)
	}

	snapshot, _, err := a.progress.Read(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: read progress: %v", ErrSessionProcessing, err)
	}

	sessionTotal := 0.0
	for _, si := range scored {
		sessionTotal += si.Result.Score
	}
	average := 0.0
	if len(scored) > 0 {
		average = sessionTotal / float64(len(scored))
	}

	a.log.Info("session already processed, returning committed result",
		zap.String("user_id", session.UserID),
		zap.String("session_id", session.ID))

	return &SubmitResult{
		Progress:         snapshot,
		Scored:           scored,
		XPDelta:          rec.XPDelta,
		SessionAverage:   average,
		AlreadyProcessed: true,
	}, nil
}

func (a *Aggregator) validate(session *Session) error {
	if len(session.Interactions) == 0 {
		return fmt.Errorf("%w: %w: %w", ErrSessionProcessing, ErrInvalidSession, ErrEmptySession)
	}
	if session.UserID == "" {
		return fmt.Errorf("%w: %w: missing user id", ErrSessionProcessing, ErrInvalidSession)
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.EndedAt.IsZero() {
		session.EndedAt = a.now()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = session.EndedAt
	}
	for i := range session.Interactions {
		it := &session.Interactions[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if strings.TrimSpace(it.ResponseText) == "" {
			return fmt.Errorf("%w: %w: interaction %s has empty response text", ErrSessionProcessing, ErrInvalidSession, it.ID)
		}
		if _, ok := a.bank.Question(it.QuestionID); !ok {
			return fmt.Errorf("%w: %w: unknown question %d", ErrSessionProcessing, ErrInvalidSession, it.QuestionID)
		}
		if _, ok := a.bank.Persona(it.PersonaID); !ok {
			return fmt.Errorf("%w: %w: unknown persona %q", ErrSessionProcessing, ErrInvalidSession, it.PersonaID)
		}
	}
	return nil
}

func (a *Aggregator) scoreAll(ctx context.Context, session Session) ([]ScoredInteraction, error) {
	scored := make([]ScoredInteraction, 0, len(session.Interactions))
	for _, it := range session.Interactions {
		q, _ := a.bank.Question(it.QuestionID)
		p, _ := a.bank.Persona(it.PersonaID)

		result, err := a.scorer.Score(ctx, it.ResponseText, scoring.Rubric{Question: q, Persona: p})
		if err != nil {
			return nil, fmt.Errorf("%w: score interaction %s: %v", ErrSessionProcessing, it.ID, err)
		}

		scored = append(scored, ScoredInteraction{
			Interaction: it,
			Result:      result,
			XPDelta:     xp.ComputeDelta(result.Score, q.Difficulty),
		})
	}
	return scored, nil
}

// fold applies the scored session to a working copy of the snapshot.
func (a *Aggregator) fold(work *store.UserProgress, scored []ScoredInteraction, closeDay string) {
	work.TotalSessions++
	for _, si := range scored {
		q, _ := a.bank.Question(si.QuestionID)

		work.TotalInteractions++
		work.TotalScore += si.Result.Score
		work.TotalXP += si.XPDelta
		if si.Result.Score > work.BestScore {
			work.BestScore = si.Result.Score
		}
		updateStat(work.CategoryStats, q.Category, si.Result.Score)
		updateStat(work.PersonaStats, si.PersonaID, si.Result.Score)
	}
	work.AverageScore = work.TotalScore / float64(work.TotalInteractions)

	work.CurrentStreak, work.LongestStreak = streak.Update(
		work.LastPracticeDay, work.CurrentStreak, work.LongestStreak, closeDay)
	work.LastPracticeDay = closeDay
}

func updateStat(stats map[string]*store.CategoryStat, key string, score float64) {
	s := stats[key]
	if s == nil {
		s = &store.CategoryStat{}
		stats[key] = s
	}
	s.Count++
	s.TotalScore += score
	s.AverageScore = s.TotalScore / float64(s.Count)
}

// appendRecord stores the processed session for history views. The
// snapshot is already committed; a history write failure is logged, not
// surfaced.
func (a *Aggregator) appendRecord(ctx context.Context, session Session, result *SubmitResult) {
	if a.sessions == nil {
		return
	}
	data, err := json.Marshal(result.Scored)
	if err != nil {
		a.log.Warn("marshal session record", zap.Error(err))
		return
	}
	rec := &store.SessionRecord{
		ID:               session.ID,
		UserID:           session.UserID,
		StartedAt:        session.StartedAt.UTC(),
		EndedAt:          session.EndedAt.UTC(),
		InteractionCount: len(session.Interactions),
		XPDelta:          result.XPDelta,
		Data:             data,
	}
	if err := a.sessions.Append(ctx, rec); err != nil {
		a.log.Warn("append session record",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}

func bonusXP(newly []achievements.Achievement) int {
	total := 0
	for _, ach := range newly {
		total += ach.BonusXP
	}
	return total
}
