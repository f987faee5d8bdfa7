package model

import "time"

// Repo is a participant's registered GitHub repository within one event.
// A given GitHub URL may be registered at most once per event.
type Repo struct {
	ID      string `json:"id" bson:"_id"`
	EventID string `json:"event_id" bson:"event_id"`
	UserID  string `json:"user_id" bson:"user_id"`

	GithubURL     string `json:"github_url" bson:"github_url"`
	Owner         string `json:"owner" bson:"owner"`
	Name          string `json:"name" bson:"name"`
	FullName      string `json:"full_name" bson:"full_name"` // owner/name
	DefaultBranch string `json:"default_branch" bson:"default_branch"`

	WebhookID     string `json:"webhook_id,omitempty" bson:"webhook_id,omitempty"`
	WebhookActive bool   `json:"webhook_active" bson:"webhook_active"`

	// Running totals, updated incrementally on every processed commit and
	// never recomputed from scratch except by an explicit resync.
	TotalCommits int        `json:"total_commits" bson:"total_commits"`
	TotalScore   int        `json:"total_score" bson:"total_score"`
	Stats        RepoStats  `json:"stats" bson:"stats"`
	LastCommitAt *time.Time `json:"last_commit_at,omitempty" bson:"last_commit_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// RepoStats holds aggregated diff totals for a repository.
type RepoStats struct {
	Additions      int     `json:"additions" bson:"additions"`
	Deletions      int     `json:"deletions" bson:"deletions"`
	FilesChanged   int     `json:"files_changed" bson:"files_changed"`
	AverageQuality float64 `json:"average_quality" bson:"average_quality"`
}
