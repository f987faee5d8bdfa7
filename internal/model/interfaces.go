package model

import (
	"context"
	"time"
)

// Storage is the durable store for events, repos, commits and scores. It
// must enforce SHA uniqueness for commits, (event,user) uniqueness for
// scores and (event,githubUrl) uniqueness for repos.
type Storage interface {
	// Events
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	UpdateEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context) ([]*Event, error)
	ListEventsByStatus(ctx context.Context, status EventStatus) ([]*Event, error)
	FindExpiredEvents(ctx context.Context, now time.Time) ([]*Event, error)

	// Repos
	CreateRepo(ctx context.Context, repo *Repo) error
	GetRepo(ctx context.Context, id string) (*Repo, error)
	GetRepoByFullName(ctx context.Context, fullName, eventID string) (*Repo, error)
	GetRepoByURL(ctx context.Context, eventID, githubURL string) (*Repo, error)
	UpdateRepo(ctx context.Context, repo *Repo) error
	DeleteReposByEvent(ctx context.Context, eventID string) error

	// Commits
	CreateCommit(ctx context.Context, commit *Commit) error
	GetCommitBySHA(ctx context.Context, sha string) (*Commit, error)
	UpdateCommit(ctx context.Context, commit *Commit) error
	CountCommitsByRepo(ctx context.Context, eventID, repoID string) (int, error)
	ListValidCommits(ctx context.Context, eventID, userID string) ([]*Commit, error)
	ListCommitsByEvent(ctx context.Context, eventID string, limit int) ([]*Commit, error)
	DeleteCommitsByEvent(ctx context.Context, eventID string) error

	// Scores
	CreateScore(ctx context.Context, score *Score) error
	GetScore(ctx context.Context, eventID, userID string) (*Score, error)
	UpdateScore(ctx context.Context, score *Score) error
	ListScoresByEvent(ctx context.Context, eventID string) ([]*Score, error)
	DeleteScoresByEvent(ctx context.Context, eventID string) error

	Close(ctx context.Context) error
}

// CodeHost is the GitHub collaborator consumed by the core.
type CodeHost interface {
	ValidateWebhook(payload []byte, signature string) error
	ParsePushEvent(payload []byte) (*PushEvent, error)
	GetCommitDetails(ctx context.Context, owner, repo, sha string) (*CommitDetail, error)
	ListCommitsSince(ctx context.Context, owner, repo string, since, until time.Time, branch string, limit int) ([]*CommitDetail, error)
	CreateWebhook(ctx context.Context, owner, repo, hookURL string) (string, error)
}

// AgentAPI is one AI backend capable of answering a single prompt.
type AgentAPI interface {
	CallAPI(ctx context.Context, req APIRequest) (APIResponse, error)
}

// APIRequest is a provider-agnostic AI call.
type APIRequest struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
	ResponseType string
}

// APIResponse is a provider-agnostic AI answer.
type APIResponse struct {
	Content      string
	TotalTokens  int
	PromptTokens int
}

// Notifier is a fire-and-forget notification sink. Implementations must
// never block intake and never surface delivery failures to callers.
type Notifier interface {
	CommitProcessed(event *Event, commit *Commit, repo *Repo)
	EventStarted(event *Event)
	EventFinished(event *Event, top []*Score)
	AchievementEarned(event *Event, userID string, achievement AchievementType)
}
