package pipeline

import (
	"context"
	"time"

	"github.com/onecommit/onecommit/internal/model"
	"github.com/onecommit/onecommit/internal/scoring"
)

const classifyTimeout = 2 * time.Minute

// submitClassification schedules the AI step on the worker pool. Intake has
// already finished: a full pool or a pool error only delays enrichment, the
// commit stays scored by base and timing. The task works on its own copy so
// the caller keeps an unshared commit.
func (p *Pipeline) submitClassification(commit *model.Commit) {
	c := *commit
	err := p.pool.Submit(func() {
		p.classify(&c)
	})
	if err != nil {
		p.log.Error("failed to submit classification task", "error", err, "sha", commit.SHA)
	}
}

// classify runs the AI step for one commit and folds the verdict back into
// the stored commit and the participant's aggregate. Runs detached from the
// delivery request.
func (p *Pipeline) classify(commit *model.Commit) {
	ctx, cancel := context.WithTimeout(context.Background(), classifyTimeout)
	defer cancel()

	if err := p.limiter.Wait(ctx); err != nil {
		p.log.Warn("classification cancelled", "error", err, "sha", commit.SHA)
		return
	}

	// Reload: a redelivered task must not classify twice.
	stored, err := p.storage.GetCommitBySHA(ctx, commit.SHA)
	if err != nil {
		p.log.Error("cannot reload commit for classification", "error", err, "sha", commit.SHA)
		return
	}
	if stored.AIAnalysis.Processed {
		return
	}
	commit = stored

	report := p.classifier.Classify(ctx, model.ClassifyInput{
		Message: commit.Message,
		Stats:   commit.Stats,
		Files:   commit.Files,
	})

	before := commit.Score

	commit.AIAnalysis = model.AIAnalysis{
		Processed:    true,
		QualityScore: report.QualityScore,
		IsSpam:       report.IsSpam,
		Category:     report.Category,
		Complexity:   report.Complexity,
		Summary:      report.Summary,
		Feedback:     report.Feedback,
		Suggestions:  report.Suggestions,
		Technologies: report.Technologies,
	}
	commit.Score = scoring.Calculate(commit.Stats, commit.Flags.IsLateSubmission, commit.AIAnalysis)

	if err := p.storage.UpdateCommit(ctx, commit); err != nil {
		p.log.Error("failed to store classified commit", "error", err, "sha", commit.SHA)
		return
	}

	if err := p.agg.ApplyClassification(ctx, commit, before); err != nil {
		p.log.Error("failed to apply classification to score", "error", err, "sha", commit.SHA)
		return
	}

	if err := p.agg.RecalculateRanks(ctx, commit.EventID); err != nil {
		p.log.Error("failed to recalculate ranks", "error", err, "event_id", commit.EventID)
	}
}
