package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onecommit/onecommit/internal/model"
)

func TestFallbackSpamDetection(t *testing.T) {
	for _, msg := range []string{"test", "asdf", "aaa", "111", "fix", "update", "change", "temp", "wip"} {
		report := Fallback(model.ClassifyInput{Message: msg})
		assert.True(t, report.IsSpam, "message %q should be spam", msg)
	}

	report := Fallback(model.ClassifyInput{Message: "implement user authentication flow"})
	assert.False(t, report.IsSpam)
}

func TestFallbackQualityRubric(t *testing.T) {
	// spam baseline: no bonuses at all
	report := Fallback(model.ClassifyInput{Message: "asdf"})
	assert.Equal(t, 50, report.QualityScore)

	// descriptive message, meaningful diff, several files
	report = Fallback(model.ClassifyInput{
		Message: "add commit scoring with spam penalties",
		Stats:   model.CommitStats{Additions: 80, Deletions: 20, FilesChanged: 4},
	})
	assert.Equal(t, 100, report.QualityScore)
	assert.False(t, report.IsSpam)
}

func TestFallbackCategories(t *testing.T) {
	cases := map[string]model.Category{
		"add new login feature":       model.CategoryFeature,
		"fix nil pointer in scoring":  model.CategoryBugfix,
		"refactor storage interfaces": model.CategoryRefactor,
		"update readme with examples": model.CategoryDocs,
		"rework leaderboard sorting":  model.CategoryOther,
	}
	for msg, want := range cases {
		report := Fallback(model.ClassifyInput{Message: msg})
		assert.Equal(t, want, report.Category, "message %q", msg)
	}
}

func TestFallbackComplexity(t *testing.T) {
	report := Fallback(model.ClassifyInput{Stats: model.CommitStats{Additions: 3}})
	assert.Equal(t, model.ComplexityLow, report.Complexity)

	report = Fallback(model.ClassifyInput{Stats: model.CommitStats{Additions: 100, Deletions: 50}})
	assert.Equal(t, model.ComplexityMedium, report.Complexity)

	report = Fallback(model.ClassifyInput{Stats: model.CommitStats{Additions: 600}})
	assert.Equal(t, model.ComplexityHigh, report.Complexity)
}
