package events

import (
	"context"
	"time"

	"github.com/maxbolgarin/logze/v2"

	"github.com/onecommit/onecommit/internal/model"
)

// Watcher periodically finishes running events that passed their end time,
// so the window closes even when nobody calls the finish endpoint.
type Watcher struct {
	storage  model.Storage
	service  *Service
	interval time.Duration
	log      logze.Logger
}

// NewWatcher creates an expiry watcher.
func NewWatcher(storage model.Storage, service *Service, interval time.Duration) *Watcher {
	return &Watcher{
		storage:  storage,
		service:  service,
		interval: interval,
		log:      logze.With("component", "watcher"),
	}
}

// Run blocks until the context is cancelled, checking for expired events on
// every tick. One failing event never stops the sweep.
func (w *Watcher) Run(ctx context.Context) {
	w.log.Info("expiry watcher started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("expiry watcher stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Watcher) sweep(ctx context.Context) {
	expired, err := w.storage.FindExpiredEvents(ctx, time.Now())
	if err != nil {
		w.log.Error("failed to find expired events", "error", err)
		return
	}

	for _, event := range expired {
		if _, err := w.service.Finish(ctx, event.ID); err != nil {
			w.log.Error("failed to finish expired event", "error", err, "event_id", event.ID)
			continue
		}
		w.log.Info("expired event finished", "event_id", event.ID, "name", event.Name)
	}
}
