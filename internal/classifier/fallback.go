package classifier

import (
	"regexp"
	"strings"

	"github.com/onecommit/onecommit/internal/model"
)

// Fallback rubric constants.
const (
	fallbackBaseQuality   = 50
	notSpamBonus          = 20
	longMessageBonus      = 10
	meaningfulSizeBonus   = 10
	multiFileBonus        = 10
	shortMessageLen       = 10
	longMessageLen        = 20
	smallChangeLines      = 10
	meaningfulChangeLines = 20
	largeChangeLines      = 500
	maxQuality            = 100
)

var (
	spamPattern     = regexp.MustCompile(`(?i)^(test|asdf|aaa|111|fix|update|change|temp)$`)
	featurePattern  = regexp.MustCompile(`(?i)feat|feature|add`)
	bugfixPattern   = regexp.MustCompile(`(?i)fix|bug`)
	refactorPattern = regexp.MustCompile(`(?i)refactor|improve|optimize`)
	docsPattern     = regexp.MustCompile(`(?i)doc|readme`)
	testPattern     = regexp.MustCompile(`(?i)test|spec`)
)

// Fallback classifies a commit locally when the AI backend is unavailable.
// It never fails and always returns a well-formed report with the quality
// score inside [0, 100], which makes it the guaranteed terminal path of the
// classification step.
func Fallback(in model.ClassifyInput) model.QualityReport {
	message := strings.TrimSpace(in.Message)
	totalChanges := in.Stats.Additions + in.Stats.Deletions

	isSpam := spamPattern.MatchString(message) || len(message) < shortMessageLen

	category := model.CategoryOther
	switch {
	case featurePattern.MatchString(message):
		category = model.CategoryFeature
	case bugfixPattern.MatchString(message):
		category = model.CategoryBugfix
	case refactorPattern.MatchString(message):
		category = model.CategoryRefactor
	case docsPattern.MatchString(message):
		category = model.CategoryDocs
	case testPattern.MatchString(message):
		category = model.CategoryTest
	}

	quality := fallbackBaseQuality
	if !isSpam {
		quality += notSpamBonus
	}
	if len(message) > longMessageLen {
		quality += longMessageBonus
	}
	if totalChanges > meaningfulChangeLines && totalChanges < largeChangeLines {
		quality += meaningfulSizeBonus
	}
	if in.Stats.FilesChanged > 1 && in.Stats.FilesChanged < 10 {
		quality += multiFileBonus
	}
	if quality > maxQuality {
		quality = maxQuality
	}

	complexity := model.ComplexityMedium
	switch {
	case totalChanges < smallChangeLines:
		complexity = model.ComplexityLow
	case totalChanges > largeChangeLines:
		complexity = model.ComplexityHigh
	}

	summary := "Code changes committed"
	feedback := "Consider adding more detailed commit message"
	if isSpam {
		summary = "Low quality commit"
		feedback = "Write more descriptive commit messages and make meaningful changes"
	}

	return model.QualityReport{
		QualityScore: quality,
		IsSpam:       isSpam,
		Category:     category,
		Complexity:   complexity,
		Summary:      summary,
		Feedback:     feedback,
		Suggestions: []string{
			"Write clear, descriptive commit messages",
			"Break large changes into smaller commits",
			"Follow conventional commit format",
		},
	}
}
