// Package storage provides the durable store for events, repos, commits and
// scores. The Mongo implementation is the production backend; the memory
// implementation backs tests and local development.
package storage

import (
	"context"
	"errors"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/model"
)

var _ model.Storage = (*Mongo)(nil)

// Mongo implements model.Storage on MongoDB.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    logze.Logger

	Collections struct {
		Events  *mongo.Collection
		Repos   *mongo.Collection
		Commits *mongo.Collection
		Scores  *mongo.Collection
	}
}

// NewMongo connects to MongoDB and ensures the uniqueness indexes the domain
// relies on. Connection failure here is fatal for the application: running
// without a store would produce inconsistent aggregates.
func NewMongo(ctx context.Context, cfg config.StorageConfig) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, errm.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errm.Wrap(err, "ping mongo")
	}

	db := client.Database(cfg.Database)

	s := &Mongo{
		client: client,
		db:     db,
		log:    logze.With("component", "storage"),
	}
	s.Collections.Events = db.Collection("events")
	s.Collections.Repos = db.Collection("repos")
	s.Collections.Commits = db.Collection("commits")
	s.Collections.Scores = db.Collection("scores")

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, errm.Wrap(err, "ensure indexes")
	}

	return s, nil
}

func (s *Mongo) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := s.Collections.Commits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sha", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return errm.Wrap(err, "commits sha index")
	}

	_, err = s.Collections.Scores.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return errm.Wrap(err, "scores event+user index")
	}

	_, err = s.Collections.Repos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "github_url", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return errm.Wrap(err, "repos event+url index")
	}

	_, err = s.Collections.Events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "end_time", Value: 1}}},
	})
	if err != nil {
		return errm.Wrap(err, "events indexes")
	}

	return nil
}

// Close disconnects the underlying client.
func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mapError converts driver errors into the domain error taxonomy.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return model.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return model.ErrDuplicate
	default:
		return err
	}
}
