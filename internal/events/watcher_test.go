package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onecommit/onecommit/internal/model"
	"github.com/onecommit/onecommit/internal/notify"
	"github.com/onecommit/onecommit/internal/scoring"
	"github.com/onecommit/onecommit/internal/storage"
)

func TestWatcherFinishesExpiredEvents(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	expired := createTestEvent(t, service)
	joinTestUser(t, service, expired.ID, "alice", "alice/project")
	_, err := service.Start(ctx, expired.ID)
	require.NoError(t, err)

	running := createTestEvent(t, service)
	joinTestUser(t, service, running.ID, "bob", "bob/project")
	_, err = service.Start(ctx, running.ID)
	require.NoError(t, err)

	// Rewind the first event past its end time.
	stored, err := store.GetEvent(ctx, expired.ID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	stored.EndTime = &past
	require.NoError(t, store.UpdateEvent(ctx, stored))

	watcher := NewWatcher(store, service, time.Minute)
	watcher.sweep(ctx)

	finished, err := store.GetEvent(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventFinished, finished.Status)

	still, err := store.GetEvent(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventRunning, still.Status)
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	store := storage.NewMemory()
	service := NewService(store, &stubHost{}, scoring.NewAggregator(store), notify.Noop{}, "")
	watcher := NewWatcher(store, service, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		watcher.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
