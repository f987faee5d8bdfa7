// Package github implements the CodeHost collaborator on the GitHub API.
package github

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/oauth2"

	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/model"
)

var _ model.CodeHost = (*Provider)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultCommitLimit = 100

// Provider implements the CodeHost interface for GitHub.
type Provider struct {
	client *github.Client
	config config.GithubConfig
	log    logze.Logger
}

// New creates a new GitHub provider.
func New(cfg config.GithubConfig) (*Provider, error) {
	if cfg.Token == "" {
		return nil, errm.New("GitHub token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &Provider{
		client: github.NewClient(tc),
		config: cfg,
		log:    logze.With("provider", "github"),
	}, nil
}

// ValidateWebhook validates the HMAC-SHA256 signature of a webhook delivery
// against the shared secret. An empty secret skips validation.
func (p *Provider) ValidateWebhook(payload []byte, signature string) error {
	if p.config.WebhookSecret == "" {
		return nil
	}

	// GitHub signature format: "sha256=<hex digest>"
	if !strings.HasPrefix(signature, "sha256=") {
		return errm.New("invalid GitHub signature format")
	}
	expected := strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(p.config.WebhookSecret))
	mac.Write(payload)
	calculated := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(calculated)) {
		return errm.New("webhook signature mismatch")
	}
	return nil
}

// ParsePushEvent parses a push webhook payload into the intake batch.
func (p *Provider) ParsePushEvent(payload []byte) (*model.PushEvent, error) {
	var raw pushPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errm.Wrap(err, "unmarshal push payload")
	}
	if raw.Repository.FullName == "" {
		return nil, errm.New("push payload without repository")
	}

	event := &model.PushEvent{
		RepoFullName: raw.Repository.FullName,
		Ref:          raw.Ref,
		Pusher:       raw.Pusher.Name,
		Commits:      make([]model.CommitData, 0, len(raw.Commits)),
	}

	for _, c := range raw.Commits {
		files := make([]model.CommitFile, 0, len(c.Added)+len(c.Modified)+len(c.Removed))
		for _, f := range c.Added {
			files = append(files, model.CommitFile{Filename: f, Status: "added"})
		}
		for _, f := range c.Modified {
			files = append(files, model.CommitFile{Filename: f, Status: "modified"})
		}
		for _, f := range c.Removed {
			files = append(files, model.CommitFile{Filename: f, Status: "removed"})
		}

		event.Commits = append(event.Commits, model.CommitData{
			SHA:       c.ID,
			Message:   c.Message,
			Timestamp: parsePushTime(c.Timestamp),
			URL:       c.URL,
			Author: model.CommitAuthor{
				Name:     c.Author.Name,
				Email:    c.Author.Email,
				Username: c.Author.Username,
			},
			Stats: model.CommitStats{FilesChanged: len(files)},
			Files: files,
		})
	}

	return event, nil
}

// GetCommitDetails fetches full commit information including diff stats.
func (p *Provider) GetCommitDetails(ctx context.Context, owner, repo, sha string) (*model.CommitDetail, error) {
	commit, _, err := p.client.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return nil, errm.Wrap(err, "get commit")
	}
	return convertCommit(commit), nil
}

// ListCommitsSince lists commits of a branch within a time window.
func (p *Provider) ListCommitsSince(ctx context.Context, owner, repo string, since, until time.Time, branch string, limit int) ([]*model.CommitDetail, error) {
	opts := &github.CommitsListOptions{
		SHA:         lang.Check(branch, "main"),
		ListOptions: github.ListOptions{PerPage: lang.Check(limit, defaultCommitLimit)},
	}
	if !since.IsZero() {
		opts.Since = since
	}
	if !until.IsZero() {
		opts.Until = until
	}

	commits, _, err := p.client.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return nil, errm.Wrap(err, "list commits")
	}

	out := make([]*model.CommitDetail, 0, len(commits))
	for _, c := range commits {
		out = append(out, convertCommit(c))
	}
	return out, nil
}

// CreateWebhook registers a push webhook on the repository and returns its
// handle.
func (p *Provider) CreateWebhook(ctx context.Context, owner, repo, hookURL string) (string, error) {
	hook := &github.Hook{
		Active: github.Bool(true),
		Events: []string{"push"},
		Config: &github.HookConfig{
			URL:         github.String(hookURL),
			ContentType: github.String("json"),
			Secret:      github.String(p.config.WebhookSecret),
		},
	}

	created, _, err := p.client.Repositories.CreateHook(ctx, owner, repo, hook)
	if err != nil {
		return "", errm.Wrap(err, "create hook")
	}

	p.log.Info("webhook registered", "repo", owner+"/"+repo, "hook_id", created.GetID())

	return strconv.FormatInt(created.GetID(), 10), nil
}

func convertCommit(c *github.RepositoryCommit) *model.CommitDetail {
	detail := &model.CommitDetail{
		SHA:     c.GetSHA(),
		Message: c.GetCommit().GetMessage(),
		URL:     c.GetHTMLURL(),
		Author: model.CommitAuthor{
			Name:     c.GetCommit().GetAuthor().GetName(),
			Email:    c.GetCommit().GetAuthor().GetEmail(),
			Username: c.GetAuthor().GetLogin(),
		},
		Timestamp: c.GetCommit().GetAuthor().GetDate().Time,
		Stats: model.CommitStats{
			Additions:    c.GetStats().GetAdditions(),
			Deletions:    c.GetStats().GetDeletions(),
			Total:        c.GetStats().GetTotal(),
			FilesChanged: len(c.Files),
		},
	}

	for _, f := range c.Files {
		detail.Files = append(detail.Files, model.CommitFile{
			Filename:  f.GetFilename(),
			Status:    f.GetStatus(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}

	return detail
}
