package model

// WebhookEventType is the header-carried GitHub event type.
type WebhookEventType string

const (
	WebhookPing WebhookEventType = "ping"
	WebhookPush WebhookEventType = "push"
)

// PushEvent is a parsed GitHub push webhook delivery. Commits is the unit of
// batch intake.
type PushEvent struct {
	RepoFullName string       `json:"repo_full_name"`
	Ref          string       `json:"ref"`
	Pusher       string       `json:"pusher"`
	Commits      []CommitData `json:"commits"`
}
