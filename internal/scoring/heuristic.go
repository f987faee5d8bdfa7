// Package scoring turns commits into points and maintains the per-event
// leaderboard aggregates.
package scoring

import (
	"math"

	"github.com/onecommit/onecommit/internal/model"
)

const (
	// One base point per ten changed lines, capped.
	baseDivisor = 10
	maxBase     = 50

	// Commits inside the event window earn a flat timing bonus.
	onTimeBonus = 10

	// Half of the AI quality score contributes to the total.
	qualityWeight = 0.5

	spamPenalty = 30
)

// Calculate computes the score breakdown of a single commit. Before
// classification completes it is called with a zero AIAnalysis, yielding the
// base and timing parts only; after classification it is called again with
// the report to fold in quality and the spam penalty.
func Calculate(stats model.CommitStats, isLate bool, analysis model.AIAnalysis) model.CommitScore {
	base := float64(stats.Additions+stats.Deletions) / baseDivisor
	if base > maxBase {
		base = maxBase
	}

	timing := 0
	if !isLate {
		timing = onTimeBonus
	}

	quality := float64(analysis.QualityScore) * qualityWeight

	// The total rounds the exact sum, the stored parts round separately,
	// so Base+Quality+Timing may differ from Total by one.
	sum := base + quality + float64(timing)
	if analysis.IsSpam {
		sum -= spamPenalty
	}
	total := int(math.Round(sum))
	if total < 0 {
		total = 0
	}

	return model.CommitScore{
		Base:    int(math.Round(base)),
		Quality: int(math.Round(quality)),
		Timing:  timing,
		Total:   total,
	}
}
