package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/model"
	"github.com/onecommit/onecommit/internal/scoring"
	"github.com/onecommit/onecommit/internal/storage"
)

type stubClassifier struct {
	report model.QualityReport
}

func (s stubClassifier) Classify(context.Context, model.ClassifyInput) model.QualityReport {
	return s.report
}

type stubHost struct {
	details map[string]*model.CommitDetail
	listed  []*model.CommitDetail
}

func (h *stubHost) ValidateWebhook([]byte, string) error            { return nil }
func (h *stubHost) ParsePushEvent([]byte) (*model.PushEvent, error) { return nil, nil }

func (h *stubHost) GetCommitDetails(_ context.Context, _, _, sha string) (*model.CommitDetail, error) {
	if d, ok := h.details[sha]; ok {
		return d, nil
	}
	return nil, model.ErrNotFound
}

func (h *stubHost) ListCommitsSince(context.Context, string, string, time.Time, time.Time, string, int) ([]*model.CommitDetail, error) {
	return h.listed, nil
}

func (h *stubHost) CreateWebhook(context.Context, string, string, string) (string, error) {
	return "1", nil
}

type recordingNotifier struct {
	mu           sync.Mutex
	commits      int
	achievements []model.AchievementType
}

func (n *recordingNotifier) CommitProcessed(*model.Event, *model.Commit, *model.Repo) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.commits++
}

func (n *recordingNotifier) EventStarted(*model.Event)                  {}
func (n *recordingNotifier) EventFinished(*model.Event, []*model.Score) {}

func (n *recordingNotifier) AchievementEarned(_ *model.Event, _ string, t model.AchievementType) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.achievements = append(n.achievements, t)
}

func (n *recordingNotifier) commitCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.commits
}

type fixture struct {
	pipeline *Pipeline
	store    *storage.Memory
	host     *stubHost
	notifier *recordingNotifier
	event    *model.Event
	repo     *model.Repo
}

func newFixture(t *testing.T, report model.QualityReport) *fixture {
	t.Helper()

	store := storage.NewMemory()
	host := &stubHost{details: map[string]*model.CommitDetail{}}
	notifier := &recordingNotifier{}
	agg := scoring.NewAggregator(store)

	pl, err := New(config.PipelineConfig{
		PoolSize:      4,
		ClassifyDelay: time.Millisecond,
		MaxBatchSize:  100,
	}, store, host, stubClassifier{report: report}, agg, notifier)
	require.NoError(t, err)
	t.Cleanup(pl.Close)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	event := &model.Event{
		ID:        "ev",
		Name:      "Test Event",
		Status:    model.EventRunning,
		StartTime: &start,
		EndTime:   &end,
	}
	require.NoError(t, store.CreateEvent(context.Background(), event))

	repo := &model.Repo{
		ID:       "repo",
		EventID:  "ev",
		UserID:   "alice",
		Owner:    "alice",
		Name:     "project",
		FullName: "alice/project",
	}
	require.NoError(t, store.CreateRepo(context.Background(), repo))

	return &fixture{pipeline: pl, store: store, host: host, notifier: notifier, event: event, repo: repo}
}

func commitData(sha string, add, del int) model.CommitData {
	return model.CommitData{
		SHA:       sha,
		Message:   "implement leaderboard aggregation logic",
		Timestamp: time.Now(),
		Stats: model.CommitStats{
			Additions:    add,
			Deletions:    del,
			Total:        add + del,
			FilesChanged: 2,
		},
	}
}

func TestProcessCommitScoresAndAggregates(t *testing.T) {
	f := newFixture(t, model.QualityReport{Category: model.CategoryOther, Complexity: model.ComplexityMedium})
	ctx := context.Background()

	commit, err := f.pipeline.ProcessCommit(ctx, f.event, f.repo, commitData("sha1", 50, 10))
	require.NoError(t, err)
	require.NotNil(t, commit)

	assert.Equal(t, 6, commit.Score.Base)
	assert.Equal(t, 10, commit.Score.Timing)
	assert.Equal(t, 16, commit.Score.Total)
	assert.True(t, commit.IsValid)
	assert.True(t, commit.Flags.IsFirstCommit)

	score, err := f.store.GetScore(ctx, "ev", "alice")
	require.NoError(t, err)
	// 16 commit points plus the first-commit achievement bonus
	assert.Equal(t, 16+model.AchievementBonus, score.TotalScore)
	assert.Equal(t, 1, score.ValidCommits)
	assert.Equal(t, 1, score.Rank)

	repo, err := f.store.GetRepo(ctx, "repo")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.TotalCommits)

	event, err := f.store.GetEvent(ctx, "ev")
	require.NoError(t, err)
	assert.Equal(t, 1, event.TotalCommits)

	assert.Equal(t, 1, f.notifier.commitCount())
	assert.Equal(t, []model.AchievementType{model.AchievementFirstCommit}, f.notifier.achievements)
}

func TestProcessCommitDuplicateSHASkipped(t *testing.T) {
	f := newFixture(t, model.QualityReport{})
	ctx := context.Background()

	first, err := f.pipeline.ProcessCommit(ctx, f.event, f.repo, commitData("sha1", 50, 10))
	require.NoError(t, err)
	require.NotNil(t, first)

	dup, err := f.pipeline.ProcessCommit(ctx, f.event, f.repo, commitData("sha1", 500, 100))
	require.NoError(t, err)
	assert.Nil(t, dup)

	event, err := f.store.GetEvent(ctx, "ev")
	require.NoError(t, err)
	assert.Equal(t, 1, event.TotalCommits)
}

func TestProcessCommitOutsideWindowSkipped(t *testing.T) {
	f := newFixture(t, model.QualityReport{})
	ctx := context.Background()

	early := commitData("sha1", 10, 0)
	early.Timestamp = f.event.StartTime.Add(-time.Minute)
	commit, err := f.pipeline.ProcessCommit(ctx, f.event, f.repo, early)
	require.NoError(t, err)
	assert.Nil(t, commit)

	waiting := &model.Event{ID: "ev2", Status: model.EventWaiting}
	commit, err = f.pipeline.ProcessCommit(ctx, waiting, f.repo, commitData("sha2", 10, 0))
	require.NoError(t, err)
	assert.Nil(t, commit)
}

func TestProcessCommitLateSubmission(t *testing.T) {
	f := newFixture(t, model.QualityReport{})
	ctx := context.Background()

	late := commitData("sha1", 50, 10)
	late.Timestamp = f.event.EndTime.Add(time.Minute)

	commit, err := f.pipeline.ProcessCommit(ctx, f.event, f.repo, late)
	require.NoError(t, err)
	require.NotNil(t, commit)

	assert.False(t, commit.IsValid)
	assert.True(t, commit.Flags.IsLateSubmission)
	assert.Equal(t, 0, commit.Score.Timing)

	score, err := f.store.GetScore(ctx, "ev", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, score.TotalCommits)
	assert.Equal(t, 0, score.ValidCommits)
	assert.Equal(t, 0, score.TotalScore)

	assert.Equal(t, 1, f.notifier.commitCount())
}

func TestProcessCommitLargeFlag(t *testing.T) {
	f := newFixture(t, model.QualityReport{})

	commit, err := f.pipeline.ProcessCommit(context.Background(), f.event, f.repo, commitData("sha1", 900, 200))
	require.NoError(t, err)
	require.NotNil(t, commit)

	assert.True(t, commit.Flags.IsLargeCommit)
	assert.Equal(t, 50, commit.Score.Base)
}

func TestProcessCommitEnrichesFromHost(t *testing.T) {
	f := newFixture(t, model.QualityReport{})
	f.host.details["sha1"] = &model.CommitDetail{
		SHA:   "sha1",
		Stats: model.CommitStats{Additions: 50, Deletions: 10, Total: 60, FilesChanged: 3},
		Files: []model.CommitFile{{Filename: "main.go", Status: "modified"}},
	}

	// Webhook payloads carry no diff stats.
	data := model.CommitData{SHA: "sha1", Message: "add intake path", Timestamp: time.Now()}

	commit, err := f.pipeline.ProcessCommit(context.Background(), f.event, f.repo, data)
	require.NoError(t, err)
	require.NotNil(t, commit)

	assert.Equal(t, 60, commit.Stats.Total)
	assert.Equal(t, 6, commit.Score.Base)
}

func TestProcessCommitHostOutageStillIngests(t *testing.T) {
	f := newFixture(t, model.QualityReport{})

	data := model.CommitData{SHA: "sha1", Message: "add intake path", Timestamp: time.Now()}

	commit, err := f.pipeline.ProcessCommit(context.Background(), f.event, f.repo, data)
	require.NoError(t, err)
	require.NotNil(t, commit)

	assert.Equal(t, 0, commit.Score.Base)
	assert.Equal(t, 10, commit.Score.Total)
}

func TestClassificationUpdatesScore(t *testing.T) {
	f := newFixture(t, model.QualityReport{
		QualityScore: 80,
		Category:     model.CategoryFeature,
		Complexity:   model.ComplexityMedium,
	})
	ctx := context.Background()

	commit, err := f.pipeline.ProcessCommit(ctx, f.event, f.repo, commitData("sha1", 50, 10))
	require.NoError(t, err)
	require.NotNil(t, commit)

	require.Eventually(t, func() bool {
		stored, err := f.store.GetCommitBySHA(ctx, "sha1")
		return err == nil && stored.AIAnalysis.Processed
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := f.store.GetCommitBySHA(ctx, "sha1")
	require.NoError(t, err)
	assert.Equal(t, 80, stored.AIAnalysis.QualityScore)
	assert.Equal(t, model.CategoryFeature, stored.AIAnalysis.Category)
	// base 6 + quality 40 + timing 10
	assert.Equal(t, 56, stored.Score.Total)

	require.Eventually(t, func() bool {
		score, err := f.store.GetScore(ctx, "ev", "alice")
		return err == nil && score.TotalScore == 56+model.AchievementBonus
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClassificationSpamRetractsPoints(t *testing.T) {
	f := newFixture(t, model.QualityReport{IsSpam: true})
	ctx := context.Background()

	commit, err := f.pipeline.ProcessCommit(ctx, f.event, f.repo, commitData("sha1", 50, 10))
	require.NoError(t, err)
	require.NotNil(t, commit)

	require.Eventually(t, func() bool {
		stored, err := f.store.GetCommitBySHA(ctx, "sha1")
		return err == nil && stored.AIAnalysis.Processed
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := f.store.GetCommitBySHA(ctx, "sha1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Score.Total)

	require.Eventually(t, func() bool {
		score, err := f.store.GetScore(ctx, "ev", "alice")
		// only the achievement bonus survives the spam verdict
		return err == nil && score.TotalScore == model.AchievementBonus
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProcessPushRoutesToRegisteredRepo(t *testing.T) {
	f := newFixture(t, model.QualityReport{})
	ctx := context.Background()

	push := &model.PushEvent{
		RepoFullName: "alice/project",
		Commits: []model.CommitData{
			commitData("sha1", 50, 10),
			commitData("sha2", 20, 0),
		},
	}

	res, err := f.pipeline.ProcessPush(ctx, push)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 0, res.Skipped)

	// redelivery is idempotent
	res, err = f.pipeline.ProcessPush(ctx, push)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 2, res.Skipped)
}

func TestProcessPushUnknownRepoIgnored(t *testing.T) {
	f := newFixture(t, model.QualityReport{})

	res, err := f.pipeline.ProcessPush(context.Background(), &model.PushEvent{
		RepoFullName: "mallory/unknown",
		Commits:      []model.CommitData{commitData("sha1", 10, 0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
}

func TestSyncPullsFromHost(t *testing.T) {
	f := newFixture(t, model.QualityReport{})
	ctx := context.Background()

	f.host.listed = []*model.CommitDetail{
		{
			SHA:       "sha1",
			Message:   "implement sync endpoint",
			Timestamp: time.Now(),
			Stats:     model.CommitStats{Additions: 30, Deletions: 0, Total: 30, FilesChanged: 1},
		},
	}

	res, err := f.pipeline.Sync(ctx, f.event, f.repo)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)

	stored, err := f.store.GetCommitBySHA(ctx, "sha1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Score.Base)
}

func TestSyncRequiresRunningEvent(t *testing.T) {
	f := newFixture(t, model.QualityReport{})

	waiting := &model.Event{ID: "ev2", Status: model.EventWaiting}
	_, err := f.pipeline.Sync(context.Background(), waiting, f.repo)
	assert.Error(t, err)
}
