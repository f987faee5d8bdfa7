package storage

import (
	"context"
	"time"

	"github.com/maxbolgarin/errm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onecommit/onecommit/internal/model"
)

// CreateEvent inserts a new event document.
func (s *Mongo) CreateEvent(ctx context.Context, event *model.Event) error {
	_, err := s.Collections.Events.InsertOne(ctx, event)
	return mapError(err)
}

// GetEvent returns an event by ID.
func (s *Mongo) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := s.Collections.Events.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		return nil, mapError(err)
	}
	return &event, nil
}

// UpdateEvent replaces the stored event document.
func (s *Mongo) UpdateEvent(ctx context.Context, event *model.Event) error {
	event.UpdatedAt = time.Now().UTC()
	res, err := s.Collections.Events.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event document.
func (s *Mongo) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.Collections.Events.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListEvents returns all events, newest first.
func (s *Mongo) ListEvents(ctx context.Context) ([]*model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.Collections.Events.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errm.Wrap(err, "find events")
	}
	var events []*model.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, errm.Wrap(err, "decode events")
	}
	return events, nil
}

// ListEventsByStatus returns all events with the given status.
func (s *Mongo) ListEventsByStatus(ctx context.Context, status model.EventStatus) ([]*model.Event, error) {
	cur, err := s.Collections.Events.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, errm.Wrap(err, "find events")
	}
	var events []*model.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, errm.Wrap(err, "decode events")
	}
	return events, nil
}

// FindExpiredEvents returns running events whose end time has passed.
func (s *Mongo) FindExpiredEvents(ctx context.Context, now time.Time) ([]*model.Event, error) {
	filter := bson.M{
		"status":   model.EventRunning,
		"end_time": bson.M{"$lte": now},
	}
	cur, err := s.Collections.Events.Find(ctx, filter)
	if err != nil {
		return nil, errm.Wrap(err, "find expired events")
	}
	var events []*model.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, errm.Wrap(err, "decode expired events")
	}
	return events, nil
}
