// Package events implements the hackathon event lifecycle: creation,
// participant registration, the waiting/running/finished state machine and
// the expiry watcher that finishes overdue events.
package events

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"

	"github.com/onecommit/onecommit/internal/model"
	"github.com/onecommit/onecommit/internal/scoring"
)

const (
	minNameLen  = 3
	maxNameLen  = 200
	minDuration = 1
	maxDuration = 720
	minMax      = 1
	maxMax      = 1000

	defaultDuration        = 24
	defaultMaxParticipants = 100

	leaderboardTop = 3
)

var repoURLPattern = regexp.MustCompile(`^https://github\.com/([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)

// Service owns event lifecycle transitions and participant registration.
type Service struct {
	storage  model.Storage
	host     model.CodeHost
	agg      *scoring.Aggregator
	notifier model.Notifier
	log      logze.Logger

	// webhookURL is the public URL registered on joined repositories.
	// Empty disables webhook registration, sync stays available.
	webhookURL string
}

// NewService creates the event service.
func NewService(storage model.Storage, host model.CodeHost, agg *scoring.Aggregator, notifier model.Notifier, webhookURL string) *Service {
	return &Service{
		storage:    storage,
		host:       host,
		agg:        agg,
		notifier:   notifier,
		log:        logze.With("component", "events"),
		webhookURL: webhookURL,
	}
}

// CreateEventInput is the payload for creating an event.
type CreateEventInput struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	CreatedBy        string `json:"created_by"`
	DurationHours    int    `json:"duration_hours"`
	MaxParticipants  int    `json:"max_participants"`
	DiscordChannelID string `json:"discord_channel_id"`
}

// Create registers a new event in the waiting state.
func (s *Service) Create(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	if len(in.Name) < minNameLen || len(in.Name) > maxNameLen {
		return nil, ErrInvalidName
	}
	duration := lang.Check(in.DurationHours, defaultDuration)
	if duration < minDuration || duration > maxDuration {
		return nil, ErrInvalidDuration
	}
	maxParticipants := lang.Check(in.MaxParticipants, defaultMaxParticipants)
	if maxParticipants < minMax || maxParticipants > maxMax {
		return nil, ErrInvalidMaxParticipants
	}

	now := time.Now()
	event := &model.Event{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Description:      in.Description,
		CreatedBy:        in.CreatedBy,
		Status:           model.EventWaiting,
		MaxParticipants:  maxParticipants,
		Participants:     []model.Participant{},
		DurationHours:    duration,
		DiscordChannelID: in.DiscordChannelID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.storage.CreateEvent(ctx, event); err != nil {
		return nil, errm.Wrap(err, "failed to create event")
	}

	s.log.Info("event created", "event_id", event.ID, "name", event.Name)
	return event, nil
}

// JoinInput is the payload for joining an event.
type JoinInput struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	GithubURL string `json:"github_url"`
}

// Join registers a participant with their repository in a waiting event.
// The repository gets a push webhook when a public webhook URL is
// configured; registration failures leave the repo on sync-only intake.
func (s *Service) Join(ctx context.Context, eventID string, in JoinInput) (*model.Repo, error) {
	owner, name, err := parseRepoURL(in.GithubURL)
	if err != nil {
		return nil, err
	}

	event, err := s.storage.GetEvent(ctx, eventID)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get event")
	}
	if event.Status != model.EventWaiting {
		return nil, ErrEventNotWaiting
	}
	if event.IsFull() {
		return nil, ErrEventFull
	}
	if event.HasParticipant(in.UserID) {
		return nil, ErrAlreadyJoined
	}

	now := time.Now()
	repo := &model.Repo{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		UserID:        in.UserID,
		GithubURL:     fmt.Sprintf("https://github.com/%s/%s", owner, name),
		Owner:         owner,
		Name:          name,
		FullName:      owner + "/" + name,
		DefaultBranch: "main",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.storage.CreateRepo(ctx, repo); err != nil {
		if errm.Is(err, model.ErrDuplicate) {
			return nil, ErrRepoTaken
		}
		return nil, errm.Wrap(err, "failed to create repo")
	}

	if s.webhookURL != "" {
		hookID, err := s.host.CreateWebhook(ctx, owner, name, s.webhookURL)
		if err != nil {
			s.log.Warn("cannot create webhook, repo stays on sync intake",
				"error", err, "repo", repo.FullName)
		} else {
			repo.WebhookID = hookID
			repo.WebhookActive = true
			if err := s.storage.UpdateRepo(ctx, repo); err != nil {
				s.log.Error("failed to store webhook id", "error", err, "repo_id", repo.ID)
			}
		}
	}

	event.Participants = append(event.Participants, model.Participant{
		UserID:   in.UserID,
		Username: in.Username,
		RepoID:   repo.ID,
		JoinedAt: now,
	})
	event.CurrentParticipants++
	event.UpdatedAt = now
	if err := s.storage.UpdateEvent(ctx, event); err != nil {
		return nil, errm.Wrap(err, "failed to update event")
	}

	score := &model.Score{
		ID:          uuid.NewString(),
		EventID:     event.ID,
		UserID:      in.UserID,
		RepoID:      repo.ID,
		LastUpdated: now,
		CreatedAt:   now,
	}
	if err := s.storage.CreateScore(ctx, score); err != nil && !errm.Is(err, model.ErrDuplicate) {
		s.log.Error("failed to create initial score", "error", err, "user_id", in.UserID)
	}

	s.log.Info("participant joined", "event_id", event.ID, "user_id", in.UserID, "repo", repo.FullName)
	return repo, nil
}

// Start moves a waiting event to running and opens the scoring window.
func (s *Service) Start(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.storage.GetEvent(ctx, eventID)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get event")
	}
	if event.Status != model.EventWaiting {
		return nil, ErrEventNotWaiting
	}
	if event.CurrentParticipants == 0 {
		return nil, ErrNoParticipants
	}

	now := time.Now()
	end := now.Add(time.Duration(event.DurationHours) * time.Hour)
	event.Status = model.EventRunning
	event.StartTime = &now
	event.EndTime = &end
	event.UpdatedAt = now

	if err := s.storage.UpdateEvent(ctx, event); err != nil {
		return nil, errm.Wrap(err, "failed to update event")
	}

	s.notifier.EventStarted(event)
	s.log.Info("event started", "event_id", event.ID, "ends_at", end)
	return event, nil
}

// Finish moves a running event to finished: the final ranking is computed
// and every score is locked. Finished is terminal.
func (s *Service) Finish(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.storage.GetEvent(ctx, eventID)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get event")
	}
	if event.Status != model.EventRunning {
		return nil, ErrEventNotRunning
	}

	if err := s.agg.RecalculateRanks(ctx, event.ID); err != nil {
		return nil, errm.Wrap(err, "failed to compute final ranking")
	}
	if err := s.agg.LockAll(ctx, event.ID); err != nil {
		return nil, errm.Wrap(err, "failed to lock scores")
	}

	event.Status = model.EventFinished
	event.UpdatedAt = time.Now()
	if err := s.storage.UpdateEvent(ctx, event); err != nil {
		return nil, errm.Wrap(err, "failed to update event")
	}

	scores, err := s.storage.ListScoresByEvent(ctx, event.ID)
	if err != nil {
		s.log.Error("failed to load final leaderboard", "error", err, "event_id", event.ID)
		scores = nil
	}
	if len(scores) > leaderboardTop {
		scores = scores[:leaderboardTop]
	}
	s.notifier.EventFinished(event, scores)

	s.log.Info("event finished", "event_id", event.ID)
	return event, nil
}

// Cancel moves a waiting or running event to cancelled without a final
// ranking. Scores are locked so nothing mutates them afterwards.
func (s *Service) Cancel(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.storage.GetEvent(ctx, eventID)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get event")
	}
	if event.Status != model.EventWaiting && event.Status != model.EventRunning {
		return nil, ErrEventNotRunning
	}

	if err := s.agg.LockAll(ctx, event.ID); err != nil {
		return nil, errm.Wrap(err, "failed to lock scores")
	}

	event.Status = model.EventCancelled
	event.UpdatedAt = time.Now()
	if err := s.storage.UpdateEvent(ctx, event); err != nil {
		return nil, errm.Wrap(err, "failed to update event")
	}

	s.log.Info("event cancelled", "event_id", event.ID)
	return event, nil
}

// Delete removes an event with all its repos, commits and scores. A running
// event must be finished or cancelled first.
func (s *Service) Delete(ctx context.Context, eventID string) error {
	event, err := s.storage.GetEvent(ctx, eventID)
	if err != nil {
		return errm.Wrap(err, "failed to get event")
	}
	if event.Status == model.EventRunning {
		return ErrEventRunning
	}

	if err := s.storage.DeleteCommitsByEvent(ctx, eventID); err != nil {
		return errm.Wrap(err, "failed to delete commits")
	}
	if err := s.storage.DeleteScoresByEvent(ctx, eventID); err != nil {
		return errm.Wrap(err, "failed to delete scores")
	}
	if err := s.storage.DeleteReposByEvent(ctx, eventID); err != nil {
		return errm.Wrap(err, "failed to delete repos")
	}
	if err := s.storage.DeleteEvent(ctx, eventID); err != nil {
		return errm.Wrap(err, "failed to delete event")
	}

	s.log.Info("event deleted", "event_id", eventID)
	return nil
}

// Get returns one event.
func (s *Service) Get(ctx context.Context, eventID string) (*model.Event, error) {
	return s.storage.GetEvent(ctx, eventID)
}

// List returns all events, newest first.
func (s *Service) List(ctx context.Context) ([]*model.Event, error) {
	return s.storage.ListEvents(ctx)
}

// Leaderboard returns the event's scores ordered by total, best first.
func (s *Service) Leaderboard(ctx context.Context, eventID string) ([]*model.Score, error) {
	if _, err := s.storage.GetEvent(ctx, eventID); err != nil {
		return nil, errm.Wrap(err, "failed to get event")
	}
	return s.storage.ListScoresByEvent(ctx, eventID)
}

// Commits returns the event's most recent commits.
func (s *Service) Commits(ctx context.Context, eventID string, limit int) ([]*model.Commit, error) {
	if _, err := s.storage.GetEvent(ctx, eventID); err != nil {
		return nil, errm.Wrap(err, "failed to get event")
	}
	return s.storage.ListCommitsByEvent(ctx, eventID, limit)
}

// Repo resolves a participant's repository inside an event by its URL.
func (s *Service) Repo(ctx context.Context, eventID, githubURL string) (*model.Repo, error) {
	owner, name, err := parseRepoURL(githubURL)
	if err != nil {
		return nil, err
	}
	return s.storage.GetRepoByURL(ctx, eventID, fmt.Sprintf("https://github.com/%s/%s", owner, name))
}

func parseRepoURL(raw string) (owner, name string, err error) {
	m := repoURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", "", ErrInvalidRepoURL
	}
	return m[1], m[2], nil
}
