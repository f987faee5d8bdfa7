package scoring

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/onecommit/onecommit/internal/model"
)

// Aggregator maintains per-(event,user) score aggregates. All mutations of
// one participant's score are serialized through a keyed mutex, so
// concurrent webhook deliveries cannot produce lost updates.
type Aggregator struct {
	storage model.Storage
	log     logze.Logger

	// Keyed by eventID+"/"+userID. sync.Map gives an atomic get-or-create
	// for the per-participant mutex, which abstract maps do not.
	locks sync.Map
}

// NewAggregator creates a score aggregator over the given storage.
func NewAggregator(storage model.Storage) *Aggregator {
	return &Aggregator{
		storage: storage,
		log:     logze.With("component", "scoring"),
	}
}

func (a *Aggregator) lock(eventID, userID string) func() {
	v, _ := a.locks.LoadOrStore(eventID+"/"+userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ApplyCommit folds a freshly ingested commit into the participant's
// aggregate. Invalid (late) commits count towards TotalCommits only.
func (a *Aggregator) ApplyCommit(ctx context.Context, commit *model.Commit) (*model.Score, error) {
	unlock := a.lock(commit.EventID, commit.UserID)
	defer unlock()

	score, err := a.getOrCreate(ctx, commit.EventID, commit.UserID, commit.RepoID)
	if err != nil {
		return nil, err
	}
	if score.IsLocked {
		return nil, model.ErrScoreLocked
	}

	score.TotalCommits++
	if commit.IsValid {
		score.ValidCommits++
		score.TotalScore += commit.Score.Total
		score.Breakdown.BaseScore += commit.Score.Base
		score.Breakdown.QualityScore += commit.Score.Quality
		score.Breakdown.TimingScore += commit.Score.Timing
		score.Stats.TotalAdditions += commit.Stats.Additions
		score.Stats.TotalDeletions += commit.Stats.Deletions
		score.Stats.TotalFilesChanged += commit.Stats.FilesChanged
		score.Stats.AverageQuality = a.averageQuality(ctx, commit.EventID, commit.UserID)
	}
	score.LastUpdated = time.Now()

	if err := a.storage.UpdateScore(ctx, score); err != nil {
		return nil, errm.Wrap(err, "failed to update score")
	}

	return score, nil
}

// ApplyClassification folds the difference between a commit's score before
// and after AI classification into the aggregate. A spam verdict retracts
// the already credited base and timing points through the total delta.
func (a *Aggregator) ApplyClassification(ctx context.Context, commit *model.Commit, before model.CommitScore) error {
	if !commit.IsValid {
		return nil
	}

	unlock := a.lock(commit.EventID, commit.UserID)
	defer unlock()

	score, err := a.storage.GetScore(ctx, commit.EventID, commit.UserID)
	if err != nil {
		return errm.Wrap(err, "failed to get score")
	}
	if score.IsLocked {
		return model.ErrScoreLocked
	}

	score.TotalScore += commit.Score.Total - before.Total
	score.Breakdown.QualityScore += commit.Score.Quality - before.Quality
	if score.TotalScore < 0 {
		score.TotalScore = 0
	}

	score.Stats.AverageQuality = a.averageQuality(ctx, commit.EventID, commit.UserID)
	score.LastUpdated = time.Now()

	if err := a.storage.UpdateScore(ctx, score); err != nil {
		return errm.Wrap(err, "failed to update score")
	}

	return nil
}

// GrantAchievement grants an achievement with its one-time bonus. Granting
// is idempotent by type: a repeated grant reports false and changes nothing.
func (a *Aggregator) GrantAchievement(ctx context.Context, eventID, userID string, t model.AchievementType) (bool, error) {
	unlock := a.lock(eventID, userID)
	defer unlock()

	score, err := a.storage.GetScore(ctx, eventID, userID)
	if err != nil {
		return false, errm.Wrap(err, "failed to get score")
	}
	if score.IsLocked {
		return false, model.ErrScoreLocked
	}
	if score.HasAchievement(t) {
		return false, nil
	}

	score.Achievements = append(score.Achievements, model.Achievement{
		Type:     t,
		EarnedAt: time.Now(),
	})
	score.Breakdown.BonusScore += model.AchievementBonus
	score.TotalScore += model.AchievementBonus
	score.LastUpdated = time.Now()

	if err := a.storage.UpdateScore(ctx, score); err != nil {
		return false, errm.Wrap(err, "failed to update score")
	}

	return true, nil
}

// RecalculateRanks recomputes rank and percentile for every participant of
// an event. Rank is one plus the number of strictly higher totals, so equal
// totals share a rank.
func (a *Aggregator) RecalculateRanks(ctx context.Context, eventID string) error {
	scores, err := a.storage.ListScoresByEvent(ctx, eventID)
	if err != nil {
		return errm.Wrap(err, "failed to list scores")
	}

	n := len(scores)
	for _, score := range scores {
		rank := 1
		for _, other := range scores {
			if other.TotalScore > score.TotalScore {
				rank++
			}
		}
		score.Rank = rank
		score.Percentile = float64(n-rank) / float64(n) * 100

		if err := a.storage.UpdateScore(ctx, score); err != nil {
			return errm.Wrap(err, "failed to update rank")
		}
	}

	return nil
}

// LockAll locks every score of an event, freezing the leaderboard. Used by
// the finish transition.
func (a *Aggregator) LockAll(ctx context.Context, eventID string) error {
	scores, err := a.storage.ListScoresByEvent(ctx, eventID)
	if err != nil {
		return errm.Wrap(err, "failed to list scores")
	}

	for _, score := range scores {
		if score.IsLocked {
			continue
		}
		score.IsLocked = true
		score.LastUpdated = time.Now()
		if err := a.storage.UpdateScore(ctx, score); err != nil {
			return errm.Wrap(err, "failed to lock score")
		}
	}

	return nil
}

func (a *Aggregator) getOrCreate(ctx context.Context, eventID, userID, repoID string) (*model.Score, error) {
	score, err := a.storage.GetScore(ctx, eventID, userID)
	if err == nil {
		return score, nil
	}
	if !errm.Is(err, model.ErrNotFound) {
		return nil, errm.Wrap(err, "failed to get score")
	}

	now := time.Now()
	score = &model.Score{
		ID:          uuid.NewString(),
		EventID:     eventID,
		UserID:      userID,
		RepoID:      repoID,
		LastUpdated: now,
		CreatedAt:   now,
	}
	if err := a.storage.CreateScore(ctx, score); err != nil {
		if errm.Is(err, model.ErrDuplicate) {
			return a.storage.GetScore(ctx, eventID, userID)
		}
		return nil, errm.Wrap(err, "failed to create score")
	}

	return score, nil
}

// averageQuality computes the mean AI quality across the participant's
// valid commits. Commits still awaiting classification count as zero, so
// the mean rises as reports come in. Best effort: on a storage error the
// previous value simply stays.
func (a *Aggregator) averageQuality(ctx context.Context, eventID, userID string) float64 {
	commits, err := a.storage.ListValidCommits(ctx, eventID, userID)
	if err != nil {
		a.log.Warn("cannot list commits for average quality", "error", err, "event_id", eventID)
		return 0
	}
	if len(commits) == 0 {
		return 0
	}

	sum := 0
	for _, c := range commits {
		if c.AIAnalysis.Processed {
			sum += c.AIAnalysis.QualityScore
		}
	}
	return float64(sum) / float64(len(commits))
}
