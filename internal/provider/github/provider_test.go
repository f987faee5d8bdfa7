package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onecommit/onecommit/internal/config"
)

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newTestProvider(t *testing.T, secret string) *Provider {
	t.Helper()
	p, err := New(config.GithubConfig{Token: "token", WebhookSecret: secret})
	require.NoError(t, err)
	return p
}

func TestValidateWebhook(t *testing.T) {
	p := newTestProvider(t, "secret")
	payload := []byte(`{"ref":"refs/heads/main"}`)

	assert.NoError(t, p.ValidateWebhook(payload, signPayload("secret", payload)))
	assert.Error(t, p.ValidateWebhook(payload, signPayload("wrong", payload)))
	assert.Error(t, p.ValidateWebhook(payload, "sha1=deadbeef"))
	assert.Error(t, p.ValidateWebhook(payload, ""))
}

func TestValidateWebhookEmptySecretSkips(t *testing.T) {
	p := newTestProvider(t, "")

	assert.NoError(t, p.ValidateWebhook([]byte("anything"), ""))
}

func TestParsePushEvent(t *testing.T) {
	p := newTestProvider(t, "")

	payload := []byte(`{
		"ref": "refs/heads/main",
		"repository": {"full_name": "alice/project", "default_branch": "main"},
		"pusher": {"name": "alice"},
		"commits": [
			{
				"id": "abc123",
				"message": "add scoring pipeline",
				"timestamp": "2026-08-30T12:00:00Z",
				"url": "https://github.com/alice/project/commit/abc123",
				"author": {"name": "Alice", "email": "alice@example.com", "username": "alice"},
				"added": ["scoring.go"],
				"modified": ["main.go"],
				"removed": []
			}
		]
	}`)

	event, err := p.ParsePushEvent(payload)
	require.NoError(t, err)

	assert.Equal(t, "alice/project", event.RepoFullName)
	assert.Equal(t, "refs/heads/main", event.Ref)
	assert.Equal(t, "alice", event.Pusher)
	require.Len(t, event.Commits, 1)

	commit := event.Commits[0]
	assert.Equal(t, "abc123", commit.SHA)
	assert.Equal(t, "add scoring pipeline", commit.Message)
	assert.Equal(t, "alice", commit.Author.Username)
	assert.Equal(t, 2, commit.Stats.FilesChanged)
	assert.Equal(t, 0, commit.Stats.Additions)
	require.Len(t, commit.Files, 2)
	assert.Equal(t, "added", commit.Files[0].Status)
	assert.Equal(t, "modified", commit.Files[1].Status)
	assert.Equal(t, 2026, commit.Timestamp.Year())
}

func TestParsePushEventRejectsGarbage(t *testing.T) {
	p := newTestProvider(t, "")

	_, err := p.ParsePushEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = p.ParsePushEvent([]byte(`{"ref": "refs/heads/main"}`))
	assert.Error(t, err)
}

func TestParsePushTime(t *testing.T) {
	ts := parsePushTime("2026-08-30T12:00:00+02:00")
	assert.False(t, ts.IsZero())

	assert.True(t, parsePushTime("yesterday").IsZero())
}
