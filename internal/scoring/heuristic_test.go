package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onecommit/onecommit/internal/model"
)

func TestCalculateBeforeClassification(t *testing.T) {
	score := Calculate(model.CommitStats{Additions: 50, Deletions: 10}, false, model.AIAnalysis{})

	assert.Equal(t, 6, score.Base)
	assert.Equal(t, 10, score.Timing)
	assert.Equal(t, 0, score.Quality)
	assert.Equal(t, 16, score.Total)
}

func TestCalculateFractionalBase(t *testing.T) {
	score := Calculate(model.CommitStats{Additions: 60, Deletions: 6}, false, model.AIAnalysis{})

	// 66 lines give base 6.6: stored as 7, total round(6.6+10) = 17
	assert.Equal(t, 7, score.Base)
	assert.Equal(t, 17, score.Total)

	analysis := model.AIAnalysis{Processed: true, QualityScore: 85}
	score = Calculate(model.CommitStats{Additions: 60, Deletions: 6}, false, analysis)

	// total rounds the exact sum 6.6+42.5+10, not the rounded parts
	assert.Equal(t, 7, score.Base)
	assert.Equal(t, 43, score.Quality)
	assert.Equal(t, 59, score.Total)
}

func TestCalculateBaseCap(t *testing.T) {
	score := Calculate(model.CommitStats{Additions: 4000, Deletions: 2000}, false, model.AIAnalysis{})

	assert.Equal(t, 50, score.Base)
	assert.Equal(t, 60, score.Total)
}

func TestCalculateLateCommit(t *testing.T) {
	score := Calculate(model.CommitStats{Additions: 100}, true, model.AIAnalysis{})

	assert.Equal(t, 0, score.Timing)
	assert.Equal(t, 10, score.Total)
}

func TestCalculateWithQuality(t *testing.T) {
	analysis := model.AIAnalysis{Processed: true, QualityScore: 85}
	score := Calculate(model.CommitStats{Additions: 50, Deletions: 10}, false, analysis)

	assert.Equal(t, 6, score.Base)
	assert.Equal(t, 43, score.Quality) // round(85 * 0.5)
	assert.Equal(t, 10, score.Timing)
	assert.Equal(t, 59, score.Total)
}

func TestCalculateSpamPenalty(t *testing.T) {
	analysis := model.AIAnalysis{Processed: true, QualityScore: 10, IsSpam: true}
	score := Calculate(model.CommitStats{Additions: 5}, false, analysis)

	// 0 base + 5 quality + 10 timing - 30 penalty clamps at zero
	assert.Equal(t, 0, score.Total)
}

func TestCalculateSpamKeepsPositiveTotal(t *testing.T) {
	analysis := model.AIAnalysis{Processed: true, QualityScore: 40, IsSpam: true}
	score := Calculate(model.CommitStats{Additions: 500}, false, analysis)

	// 50 base + 20 quality + 10 timing - 30 penalty
	assert.Equal(t, 50, score.Total)
}

func TestCalculateZeroStats(t *testing.T) {
	score := Calculate(model.CommitStats{}, false, model.AIAnalysis{})

	assert.Equal(t, 0, score.Base)
	assert.Equal(t, 10, score.Total)
}
