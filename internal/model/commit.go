package model

import "time"

// LargeCommitThreshold is the changed-lines count above which a commit gets
// the large-commit flag.
const LargeCommitThreshold = 1000

// Commit is one ingested git commit, scored and attributed to a
// user/repo/event. Identity is the SHA: a SHA belongs to exactly one record
// no matter how many times it is redelivered.
type Commit struct {
	ID      string `json:"id" bson:"_id"`
	EventID string `json:"event_id" bson:"event_id"`
	RepoID  string `json:"repo_id" bson:"repo_id"`
	UserID  string `json:"user_id" bson:"user_id"`

	SHA       string       `json:"sha" bson:"sha"`
	Message   string       `json:"message" bson:"message"`
	Author    CommitAuthor `json:"author" bson:"author"`
	Timestamp time.Time    `json:"timestamp" bson:"timestamp"`
	URL       string       `json:"url" bson:"url"`

	Stats CommitStats  `json:"stats" bson:"stats"`
	Files []CommitFile `json:"files,omitempty" bson:"files,omitempty"`

	// AIAnalysis and Score mutate in place as classification completes
	// asynchronously; everything else is fixed at intake.
	AIAnalysis AIAnalysis  `json:"ai_analysis" bson:"ai_analysis"`
	Score      CommitScore `json:"score" bson:"score"`

	// IsValid is fixed forever at creation: false means a late submission
	// recorded for audit and excluded from every scoring computation.
	IsValid bool        `json:"is_valid" bson:"is_valid"`
	Flags   CommitFlags `json:"flags" bson:"flags"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// CommitAuthor identifies who authored a commit.
type CommitAuthor struct {
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`
	Username string `json:"username,omitempty" bson:"username,omitempty"`
}

// CommitStats represents commit diff statistics.
type CommitStats struct {
	Additions    int `json:"additions" bson:"additions"`
	Deletions    int `json:"deletions" bson:"deletions"`
	Total        int `json:"total" bson:"total"`
	FilesChanged int `json:"files_changed" bson:"files_changed"`
}

// CommitFile is one file entry of a commit diff.
type CommitFile struct {
	Filename  string `json:"filename" bson:"filename"`
	Status    string `json:"status,omitempty" bson:"status,omitempty"`
	Additions int    `json:"additions" bson:"additions"`
	Deletions int    `json:"deletions" bson:"deletions"`
}

// AIAnalysis is the stored quality report of a commit. Processed stays false
// until the classification step completes.
type AIAnalysis struct {
	Processed    bool       `json:"processed" bson:"processed"`
	QualityScore int        `json:"quality_score" bson:"quality_score"`
	IsSpam       bool       `json:"is_spam" bson:"is_spam"`
	Category     Category   `json:"category" bson:"category"`
	Complexity   Complexity `json:"complexity" bson:"complexity"`
	Summary      string     `json:"summary,omitempty" bson:"summary,omitempty"`
	Feedback     string     `json:"feedback,omitempty" bson:"feedback,omitempty"`
	Suggestions  []string   `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
	Technologies []string   `json:"technologies,omitempty" bson:"technologies,omitempty"`
}

// CommitScore is the heuristic score breakdown of a single commit.
type CommitScore struct {
	Base    int `json:"base" bson:"base"`
	Quality int `json:"quality" bson:"quality"`
	Timing  int `json:"timing" bson:"timing"`
	Total   int `json:"total" bson:"total"`
}

// CommitFlags marks notable intake conditions. IsFirstCommit is advisory:
// the count-then-insert check is not race-safe, the achievement grant is
// idempotent regardless.
type CommitFlags struct {
	IsLateSubmission bool `json:"is_late_submission" bson:"is_late_submission"`
	IsFirstCommit    bool `json:"is_first_commit" bson:"is_first_commit"`
	IsLargeCommit    bool `json:"is_large_commit" bson:"is_large_commit"`
}

// CommitData is a raw inbound commit before normalization, either from a
// webhook push payload or a synced GitHub commit.
type CommitData struct {
	SHA       string       `json:"sha"`
	Message   string       `json:"message"`
	Author    CommitAuthor `json:"author"`
	Timestamp time.Time    `json:"timestamp"`
	URL       string       `json:"url"`
	Stats     CommitStats  `json:"stats"`
	Files     []CommitFile `json:"files,omitempty"`
}

// CommitDetail is the enriched commit information fetched from the code host.
type CommitDetail struct {
	SHA       string       `json:"sha"`
	Message   string       `json:"message"`
	Author    CommitAuthor `json:"author"`
	Timestamp time.Time    `json:"timestamp"`
	URL       string       `json:"url"`
	Stats     CommitStats  `json:"stats"`
	Files     []CommitFile `json:"files"`
}
