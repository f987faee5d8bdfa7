package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onecommit/onecommit/internal/model"
)

func TestMemoryCommitUniqueness(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	commit := &model.Commit{ID: "sha1", SHA: "sha1", EventID: "ev", RepoID: "r", UserID: "u"}
	require.NoError(t, m.CreateCommit(ctx, commit))

	err := m.CreateCommit(ctx, &model.Commit{ID: "sha1", SHA: "sha1", EventID: "other"})
	assert.ErrorIs(t, err, model.ErrDuplicate)
}

func TestMemoryScoreUniqueness(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateScore(ctx, &model.Score{ID: "s1", EventID: "ev", UserID: "u"}))

	err := m.CreateScore(ctx, &model.Score{ID: "s2", EventID: "ev", UserID: "u"})
	assert.ErrorIs(t, err, model.ErrDuplicate)

	require.NoError(t, m.CreateScore(ctx, &model.Score{ID: "s3", EventID: "ev2", UserID: "u"}))
}

func TestMemoryRepoUniquenessPerEvent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	url := "https://github.com/alice/project"
	require.NoError(t, m.CreateRepo(ctx, &model.Repo{ID: "r1", EventID: "ev", GithubURL: url}))

	err := m.CreateRepo(ctx, &model.Repo{ID: "r2", EventID: "ev", GithubURL: url})
	assert.ErrorIs(t, err, model.ErrDuplicate)

	// same URL in another event is allowed
	require.NoError(t, m.CreateRepo(ctx, &model.Repo{ID: "r3", EventID: "ev2", GithubURL: url}))
}

func TestMemoryUpdateMissingRecords(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	assert.ErrorIs(t, m.UpdateEvent(ctx, &model.Event{ID: "missing"}), model.ErrNotFound)
	assert.ErrorIs(t, m.UpdateRepo(ctx, &model.Repo{ID: "missing"}), model.ErrNotFound)
	assert.ErrorIs(t, m.UpdateCommit(ctx, &model.Commit{SHA: "missing"}), model.ErrNotFound)
	assert.ErrorIs(t, m.UpdateScore(ctx, &model.Score{EventID: "ev", UserID: "missing"}), model.ErrNotFound)
}

func TestMemoryCopiesOnRead(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateEvent(ctx, &model.Event{ID: "ev", Name: "original"}))

	read, err := m.GetEvent(ctx, "ev")
	require.NoError(t, err)
	read.Name = "mutated"

	again, err := m.GetEvent(ctx, "ev")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Name)
}

func TestMemoryFindExpiredEvents(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	require.NoError(t, m.CreateEvent(ctx, &model.Event{ID: "expired", Status: model.EventRunning, EndTime: &past}))
	require.NoError(t, m.CreateEvent(ctx, &model.Event{ID: "running", Status: model.EventRunning, EndTime: &future}))
	require.NoError(t, m.CreateEvent(ctx, &model.Event{ID: "finished", Status: model.EventFinished, EndTime: &past}))
	require.NoError(t, m.CreateEvent(ctx, &model.Event{ID: "waiting", Status: model.EventWaiting}))

	expired, err := m.FindExpiredEvents(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "expired", expired[0].ID)
}

func TestMemoryListEventsNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, m.CreateEvent(ctx, &model.Event{ID: "old", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, m.CreateEvent(ctx, &model.Event{ID: "new", CreatedAt: now}))

	events, err := m.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "new", events[0].ID)
	assert.Equal(t, "old", events[1].ID)
}

func TestMemoryListScoresSorted(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateScore(ctx, &model.Score{ID: "a", EventID: "ev", UserID: "a", TotalScore: 10}))
	require.NoError(t, m.CreateScore(ctx, &model.Score{ID: "b", EventID: "ev", UserID: "b", TotalScore: 30}))
	require.NoError(t, m.CreateScore(ctx, &model.Score{ID: "c", EventID: "ev", UserID: "c", TotalScore: 20}))
	require.NoError(t, m.CreateScore(ctx, &model.Score{ID: "d", EventID: "other", UserID: "d", TotalScore: 99}))

	scores, err := m.ListScoresByEvent(ctx, "ev")
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, "b", scores[0].UserID)
	assert.Equal(t, "c", scores[1].UserID)
	assert.Equal(t, "a", scores[2].UserID)
}

func TestMemoryListCommitsByEventLimit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Now()

	for i, sha := range []string{"s1", "s2", "s3"} {
		require.NoError(t, m.CreateCommit(ctx, &model.Commit{
			ID: sha, SHA: sha, EventID: "ev",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	commits, err := m.ListCommitsByEvent(ctx, "ev", 2)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "s3", commits[0].SHA)
	assert.Equal(t, "s2", commits[1].SHA)
}

func TestMemoryDeleteByEvent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateRepo(ctx, &model.Repo{ID: "r1", EventID: "ev", GithubURL: "https://github.com/a/b"}))
	require.NoError(t, m.CreateRepo(ctx, &model.Repo{ID: "r2", EventID: "other", GithubURL: "https://github.com/c/d"}))
	require.NoError(t, m.CreateCommit(ctx, &model.Commit{ID: "s1", SHA: "s1", EventID: "ev"}))
	require.NoError(t, m.CreateScore(ctx, &model.Score{ID: "sc1", EventID: "ev", UserID: "u"}))

	require.NoError(t, m.DeleteReposByEvent(ctx, "ev"))
	require.NoError(t, m.DeleteCommitsByEvent(ctx, "ev"))
	require.NoError(t, m.DeleteScoresByEvent(ctx, "ev"))

	_, err := m.GetRepo(ctx, "r1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = m.GetRepo(ctx, "r2")
	assert.NoError(t, err)
	_, err = m.GetCommitBySHA(ctx, "s1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
