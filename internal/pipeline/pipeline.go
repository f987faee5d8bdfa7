// Package pipeline is the commit intake path: webhook and sync deliveries
// come in as raw commit data, get validated against the event window,
// enriched from the code host, scored and folded into the leaderboard.
package pipeline

import (
	"context"
	"time"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/model"
	"github.com/onecommit/onecommit/internal/scoring"
)

// Classifier produces a quality report for a commit. It never fails.
type Classifier interface {
	Classify(ctx context.Context, in model.ClassifyInput) model.QualityReport
}

// Pipeline processes inbound commits end to end. Intake is synchronous and
// idempotent by SHA; AI classification runs asynchronously on a worker pool
// and folds its result back into the stored commit and the aggregates.
type Pipeline struct {
	storage    model.Storage
	host       model.CodeHost
	classifier Classifier
	agg        *scoring.Aggregator
	notifier   model.Notifier
	cfg        config.PipelineConfig
	log        logze.Logger

	pool *ants.Pool
	// limiter spaces out AI calls across all workers.
	limiter *rate.Limiter
}

// New creates a commit pipeline.
func New(
	cfg config.PipelineConfig,
	storage model.Storage,
	host model.CodeHost,
	cls Classifier,
	agg *scoring.Aggregator,
	notifier model.Notifier,
) (*Pipeline, error) {
	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create ants pool")
	}

	return &Pipeline{
		storage:    storage,
		host:       host,
		classifier: cls,
		agg:        agg,
		notifier:   notifier,
		cfg:        cfg,
		log:        logze.With("component", "pipeline"),
		pool:       pool,
		limiter:    rate.NewLimiter(rate.Every(cfg.ClassifyDelay), 1),
	}, nil
}

// Close releases the worker pool. Pending classification tasks are dropped.
func (p *Pipeline) Close() {
	p.pool.Release()
}

// PushResult sums up one push delivery.
type PushResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// ProcessPush routes a parsed push delivery to every running event the
// repository is registered in. Unknown repositories are not an error: pushes
// to repos outside any running event are silently skipped.
func (p *Pipeline) ProcessPush(ctx context.Context, push *model.PushEvent) (PushResult, error) {
	var res PushResult

	events, err := p.storage.ListEventsByStatus(ctx, model.EventRunning)
	if err != nil {
		return res, errm.Wrap(err, "failed to list running events")
	}

	commits := push.Commits
	if len(commits) > p.cfg.MaxBatchSize {
		commits = commits[:p.cfg.MaxBatchSize]
	}

	for _, event := range events {
		repo, err := p.storage.GetRepoByFullName(ctx, push.RepoFullName, event.ID)
		if err != nil {
			if errm.Is(err, model.ErrNotFound) {
				continue
			}
			return res, errm.Wrap(err, "failed to get repo")
		}

		for _, data := range commits {
			commit, err := p.ProcessCommit(ctx, event, repo, data)
			switch {
			case err != nil:
				res.Errors++
				p.log.Error("failed to process commit", "error", err,
					"sha", data.SHA, "event_id", event.ID)
			case commit == nil:
				res.Skipped++
			default:
				res.Processed++
			}
		}
	}

	return res, nil
}

// ProcessCommit ingests a single commit for one event. A nil, nil return
// means the commit was skipped: duplicate SHA, event not running, or
// authored before the event started.
func (p *Pipeline) ProcessCommit(ctx context.Context, event *model.Event, repo *model.Repo, data model.CommitData) (*model.Commit, error) {
	timer := abstract.StartTimer()

	if event.Status != model.EventRunning {
		return nil, nil
	}
	if event.StartTime != nil && data.Timestamp.Before(*event.StartTime) {
		return nil, nil
	}

	if _, err := p.storage.GetCommitBySHA(ctx, data.SHA); err == nil {
		return nil, nil
	} else if !errm.Is(err, model.ErrNotFound) {
		return nil, errm.Wrap(err, "failed to check commit")
	}

	isLate := event.EndTime != nil && data.Timestamp.After(*event.EndTime)

	commit := p.buildCommit(ctx, event, repo, data, isLate)

	if err := p.storage.CreateCommit(ctx, commit); err != nil {
		if errm.Is(err, model.ErrDuplicate) {
			return nil, nil
		}
		return nil, errm.Wrap(err, "failed to create commit")
	}

	if err := p.applyToAggregates(ctx, event, repo, commit); err != nil {
		return nil, err
	}

	p.notifier.CommitProcessed(event, commit, repo)
	p.submitClassification(commit)

	p.log.Info("commit processed",
		"sha", lang.TruncateString(commit.SHA, 8),
		"event_id", event.ID,
		"score", commit.Score.Total,
		"late", commit.Flags.IsLateSubmission,
		"elapsed_time", timer.ElapsedTime().String(),
	)

	return commit, nil
}

// Sync pulls commits for one repo from the code host and runs each through
// regular intake. It covers deliveries missed while the webhook was down.
func (p *Pipeline) Sync(ctx context.Context, event *model.Event, repo *model.Repo) (PushResult, error) {
	var res PushResult

	if event.Status != model.EventRunning {
		return res, errm.New("event is not running")
	}

	since := time.Time{}
	if event.StartTime != nil {
		since = *event.StartTime
	}
	until := time.Now()
	if event.EndTime != nil && event.EndTime.Before(until) {
		until = *event.EndTime
	}

	details, err := p.host.ListCommitsSince(ctx, repo.Owner, repo.Name, since, until, repo.DefaultBranch, p.cfg.MaxBatchSize)
	if err != nil {
		return res, errm.Wrap(err, "failed to list commits")
	}

	for _, d := range details {
		commit, err := p.ProcessCommit(ctx, event, repo, model.CommitData{
			SHA:       d.SHA,
			Message:   d.Message,
			Author:    d.Author,
			Timestamp: d.Timestamp,
			URL:       d.URL,
			Stats:     d.Stats,
			Files:     d.Files,
		})
		switch {
		case err != nil:
			res.Errors++
			p.log.Error("failed to process synced commit", "error", err, "sha", d.SHA)
		case commit == nil:
			res.Skipped++
		default:
			res.Processed++
		}
	}

	return res, nil
}

// buildCommit assembles the stored commit record, enriching the raw data
// with diff details from the code host when they are missing. Enrichment is
// best effort: webhook payloads carry no stats, but a host outage must not
// drop the commit.
func (p *Pipeline) buildCommit(ctx context.Context, event *model.Event, repo *model.Repo, data model.CommitData, isLate bool) *model.Commit {
	if data.Stats.Total == 0 && data.Stats.Additions+data.Stats.Deletions == 0 {
		detail, err := p.host.GetCommitDetails(ctx, repo.Owner, repo.Name, data.SHA)
		if err != nil {
			p.log.Warn("cannot fetch commit details", "error", err, "sha", data.SHA)
		} else {
			data.Stats = detail.Stats
			data.Files = detail.Files
			if data.Message == "" {
				data.Message = detail.Message
			}
			if data.URL == "" {
				data.URL = detail.URL
			}
		}
	}
	if data.Stats.Total == 0 {
		data.Stats.Total = data.Stats.Additions + data.Stats.Deletions
	}
	if data.Stats.FilesChanged == 0 {
		data.Stats.FilesChanged = len(data.Files)
	}

	isFirst := false
	if count, err := p.storage.CountCommitsByRepo(ctx, event.ID, repo.ID); err == nil {
		isFirst = count == 0
	}

	commit := &model.Commit{
		ID:        data.SHA,
		EventID:   event.ID,
		RepoID:    repo.ID,
		UserID:    repo.UserID,
		SHA:       data.SHA,
		Message:   data.Message,
		Author:    data.Author,
		Timestamp: data.Timestamp,
		URL:       data.URL,
		Stats:     data.Stats,
		Files:     data.Files,
		IsValid:   !isLate,
		Flags: model.CommitFlags{
			IsLateSubmission: isLate,
			IsFirstCommit:    isFirst,
			IsLargeCommit:    data.Stats.Total > model.LargeCommitThreshold,
		},
		CreatedAt: time.Now(),
	}
	commit.Score = scoring.Calculate(commit.Stats, isLate, model.AIAnalysis{})

	return commit
}

// applyToAggregates updates the repo, event and score aggregates for a newly
// stored commit and refreshes the event ranking.
func (p *Pipeline) applyToAggregates(ctx context.Context, event *model.Event, repo *model.Repo, commit *model.Commit) error {
	repo.TotalCommits++
	if commit.IsValid {
		repo.TotalScore += commit.Score.Total
		repo.Stats.Additions += commit.Stats.Additions
		repo.Stats.Deletions += commit.Stats.Deletions
		repo.Stats.FilesChanged += commit.Stats.FilesChanged
	}
	now := time.Now()
	repo.LastCommitAt = &commit.Timestamp
	repo.UpdatedAt = now
	if err := p.storage.UpdateRepo(ctx, repo); err != nil {
		return errm.Wrap(err, "failed to update repo")
	}

	event.TotalCommits++
	event.UpdatedAt = now
	if err := p.storage.UpdateEvent(ctx, event); err != nil {
		return errm.Wrap(err, "failed to update event")
	}

	if _, err := p.agg.ApplyCommit(ctx, commit); err != nil {
		return errm.Wrap(err, "failed to apply commit to score")
	}

	if commit.IsValid && commit.Flags.IsFirstCommit {
		granted, err := p.agg.GrantAchievement(ctx, commit.EventID, commit.UserID, model.AchievementFirstCommit)
		if err != nil {
			p.log.Error("failed to grant achievement", "error", err, "user_id", commit.UserID)
		} else if granted {
			p.notifier.AchievementEarned(event, commit.UserID, model.AchievementFirstCommit)
		}
	}

	if err := p.agg.RecalculateRanks(ctx, commit.EventID); err != nil {
		return errm.Wrap(err, "failed to recalculate ranks")
	}

	return nil
}
