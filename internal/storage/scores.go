package storage

import (
	"context"
	"time"

	"github.com/maxbolgarin/errm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onecommit/onecommit/internal/model"
)

// CreateScore inserts a zeroed score row; the unique (event,user) index
// rejects a second row for the same pair.
func (s *Mongo) CreateScore(ctx context.Context, score *model.Score) error {
	_, err := s.Collections.Scores.InsertOne(ctx, score)
	return mapError(err)
}

// GetScore returns the aggregate for an (event,user) pair.
func (s *Mongo) GetScore(ctx context.Context, eventID, userID string) (*model.Score, error) {
	var score model.Score
	err := s.Collections.Scores.FindOne(ctx, bson.M{"event_id": eventID, "user_id": userID}).Decode(&score)
	if err != nil {
		return nil, mapError(err)
	}
	return &score, nil
}

// UpdateScore replaces the stored score document.
func (s *Mongo) UpdateScore(ctx context.Context, score *model.Score) error {
	score.LastUpdated = time.Now().UTC()
	res, err := s.Collections.Scores.ReplaceOne(ctx, bson.M{"_id": score.ID}, score)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListScoresByEvent returns every score of an event sorted by total
// descending, the input of every rank recomputation.
func (s *Mongo) ListScoresByEvent(ctx context.Context, eventID string) ([]*model.Score, error) {
	opts := options.Find().SetSort(bson.D{{Key: "total_score", Value: -1}})
	cur, err := s.Collections.Scores.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, errm.Wrap(err, "find scores")
	}
	var scores []*model.Score
	if err := cur.All(ctx, &scores); err != nil {
		return nil, errm.Wrap(err, "decode scores")
	}
	return scores, nil
}

// DeleteScoresByEvent removes every score of an event (delete cascade).
func (s *Mongo) DeleteScoresByEvent(ctx context.Context, eventID string) error {
	_, err := s.Collections.Scores.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return errm.Wrap(err, "delete scores by event")
	}
	return nil
}
