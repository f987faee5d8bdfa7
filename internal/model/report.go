package model

// Category classifies the kind of work a commit contains.
type Category string

const (
	CategoryFeature  Category = "feature"
	CategoryBugfix   Category = "bugfix"
	CategoryRefactor Category = "refactor"
	CategoryDocs     Category = "docs"
	CategoryTest     Category = "test"
	CategoryChore    Category = "chore"
	CategoryOther    Category = "other"
)

// Complexity bands the scope of a commit.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// QualityReport is the structured output of AI (or fallback) classification
// of a commit's content. QualityScore is always within [0, 100].
type QualityReport struct {
	QualityScore int        `json:"qualityScore"`
	IsSpam       bool       `json:"isSpam"`
	Category     Category   `json:"category"`
	Complexity   Complexity `json:"complexity"`
	Summary      string     `json:"summary"`
	Feedback     string     `json:"feedback"`
	Suggestions  []string   `json:"suggestions"`
	Technologies []string   `json:"technologies"`
}

// ClassifyInput is what the classifier sees of a commit.
type ClassifyInput struct {
	Message string
	Stats   CommitStats
	Files   []CommitFile
}

// ValidCategory returns c if it is a known category, CategoryOther otherwise.
func ValidCategory(c Category) Category {
	switch c {
	case CategoryFeature, CategoryBugfix, CategoryRefactor, CategoryDocs, CategoryTest, CategoryChore, CategoryOther:
		return c
	}
	return CategoryOther
}

// ValidComplexity returns c if it is a known complexity, medium otherwise.
func ValidComplexity(c Complexity) Complexity {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return c
	}
	return ComplexityMedium
}
