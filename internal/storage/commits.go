package storage

import (
	"context"

	"github.com/maxbolgarin/errm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onecommit/onecommit/internal/model"
)

// CreateCommit inserts a commit; the unique SHA index makes redelivered
// webhooks collide with model.ErrDuplicate instead of creating a second row.
func (s *Mongo) CreateCommit(ctx context.Context, commit *model.Commit) error {
	_, err := s.Collections.Commits.InsertOne(ctx, commit)
	return mapError(err)
}

// GetCommitBySHA returns a commit by its SHA.
func (s *Mongo) GetCommitBySHA(ctx context.Context, sha string) (*model.Commit, error) {
	var commit model.Commit
	err := s.Collections.Commits.FindOne(ctx, bson.M{"sha": sha}).Decode(&commit)
	if err != nil {
		return nil, mapError(err)
	}
	return &commit, nil
}

// UpdateCommit replaces the stored commit document.
func (s *Mongo) UpdateCommit(ctx context.Context, commit *model.Commit) error {
	res, err := s.Collections.Commits.ReplaceOne(ctx, bson.M{"_id": commit.ID}, commit)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// CountCommitsByRepo counts commits stored for a repo within an event.
func (s *Mongo) CountCommitsByRepo(ctx context.Context, eventID, repoID string) (int, error) {
	n, err := s.Collections.Commits.CountDocuments(ctx, bson.M{"event_id": eventID, "repo_id": repoID})
	if err != nil {
		return 0, errm.Wrap(err, "count commits")
	}
	return int(n), nil
}

// ListValidCommits returns every valid commit of a (event,user) pair, used
// for the full averageQuality recomputation.
func (s *Mongo) ListValidCommits(ctx context.Context, eventID, userID string) ([]*model.Commit, error) {
	filter := bson.M{"event_id": eventID, "user_id": userID, "is_valid": true}
	cur, err := s.Collections.Commits.Find(ctx, filter)
	if err != nil {
		return nil, errm.Wrap(err, "find valid commits")
	}
	var commits []*model.Commit
	if err := cur.All(ctx, &commits); err != nil {
		return nil, errm.Wrap(err, "decode commits")
	}
	return commits, nil
}

// ListCommitsByEvent returns the most recent commits of an event.
func (s *Mongo) ListCommitsByEvent(ctx context.Context, eventID string, limit int) ([]*model.Commit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cur, err := s.Collections.Commits.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, errm.Wrap(err, "find commits by event")
	}
	var commits []*model.Commit
	if err := cur.All(ctx, &commits); err != nil {
		return nil, errm.Wrap(err, "decode commits")
	}
	return commits, nil
}

// DeleteCommitsByEvent removes every commit of an event (delete cascade).
func (s *Mongo) DeleteCommitsByEvent(ctx context.Context, eventID string) error {
	_, err := s.Collections.Commits.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return errm.Wrap(err, "delete commits by event")
	}
	return nil
}
