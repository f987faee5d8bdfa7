package storage

import (
	"context"
	"time"

	"github.com/maxbolgarin/errm"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/onecommit/onecommit/internal/model"
)

// CreateRepo inserts a repo; returns model.ErrDuplicate when the GitHub URL
// is already registered for the event.
func (s *Mongo) CreateRepo(ctx context.Context, repo *model.Repo) error {
	_, err := s.Collections.Repos.InsertOne(ctx, repo)
	return mapError(err)
}

// GetRepo returns a repo by ID.
func (s *Mongo) GetRepo(ctx context.Context, id string) (*model.Repo, error) {
	var repo model.Repo
	err := s.Collections.Repos.FindOne(ctx, bson.M{"_id": id}).Decode(&repo)
	if err != nil {
		return nil, mapError(err)
	}
	return &repo, nil
}

// GetRepoByFullName resolves a repo by its owner/name. An empty eventID
// matches any event (a webhook delivery does not carry one).
func (s *Mongo) GetRepoByFullName(ctx context.Context, fullName, eventID string) (*model.Repo, error) {
	filter := bson.M{"full_name": fullName}
	if eventID != "" {
		filter["event_id"] = eventID
	}
	var repo model.Repo
	err := s.Collections.Repos.FindOne(ctx, filter).Decode(&repo)
	if err != nil {
		return nil, mapError(err)
	}
	return &repo, nil
}

// GetRepoByURL resolves a repo by event and GitHub URL.
func (s *Mongo) GetRepoByURL(ctx context.Context, eventID, githubURL string) (*model.Repo, error) {
	var repo model.Repo
	err := s.Collections.Repos.FindOne(ctx, bson.M{"event_id": eventID, "github_url": githubURL}).Decode(&repo)
	if err != nil {
		return nil, mapError(err)
	}
	return &repo, nil
}

// UpdateRepo replaces the stored repo document.
func (s *Mongo) UpdateRepo(ctx context.Context, repo *model.Repo) error {
	repo.UpdatedAt = time.Now().UTC()
	res, err := s.Collections.Repos.ReplaceOne(ctx, bson.M{"_id": repo.ID}, repo)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteReposByEvent removes every repo of an event (delete cascade).
func (s *Mongo) DeleteReposByEvent(ctx context.Context, eventID string) error {
	_, err := s.Collections.Repos.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return errm.Wrap(err, "delete repos by event")
	}
	return nil
}
