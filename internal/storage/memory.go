package storage

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/onecommit/onecommit/internal/model"
)

var _ model.Storage = (*Memory)(nil)

// Memory implements model.Storage in process memory with the same
// uniqueness guarantees as the Mongo backend. It backs tests and the
// `storage.type: memory` development mode.
type Memory struct {
	mu      sync.RWMutex
	events  map[string]*model.Event
	repos   map[string]*model.Repo
	commits map[string]*model.Commit // keyed by SHA
	scores  map[string]*model.Score  // keyed by eventID+"/"+userID
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		events:  make(map[string]*model.Event),
		repos:   make(map[string]*model.Repo),
		commits: make(map[string]*model.Commit),
		scores:  make(map[string]*model.Score),
	}
}

func scoreKey(eventID, userID string) string { return eventID + "/" + userID }

func copyEvent(e *model.Event) *model.Event {
	c := *e
	c.Participants = slices.Clone(e.Participants)
	return &c
}

func copyScore(s *model.Score) *model.Score {
	c := *s
	c.Achievements = slices.Clone(s.Achievements)
	return &c
}

func copyCommit(cm *model.Commit) *model.Commit {
	c := *cm
	c.Files = slices.Clone(cm.Files)
	c.AIAnalysis.Suggestions = slices.Clone(cm.AIAnalysis.Suggestions)
	c.AIAnalysis.Technologies = slices.Clone(cm.AIAnalysis.Technologies)
	return &c
}

// Events

func (m *Memory) CreateEvent(_ context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; ok {
		return model.ErrDuplicate
	}
	m.events[event.ID] = copyEvent(event)
	return nil
}

func (m *Memory) GetEvent(_ context.Context, id string) (*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	event, ok := m.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return copyEvent(event), nil
}

func (m *Memory) UpdateEvent(_ context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return model.ErrNotFound
	}
	event.UpdatedAt = time.Now().UTC()
	m.events[event.ID] = copyEvent(event)
	return nil
}

func (m *Memory) DeleteEvent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *Memory) ListEvents(_ context.Context) ([]*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, copyEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListEventsByStatus(_ context.Context, status model.EventStatus) ([]*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Event
	for _, e := range m.events {
		if e.Status == status {
			out = append(out, copyEvent(e))
		}
	}
	return out, nil
}

func (m *Memory) FindExpiredEvents(_ context.Context, now time.Time) ([]*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Event
	for _, e := range m.events {
		if e.Status == model.EventRunning && e.EndTime != nil && !e.EndTime.After(now) {
			out = append(out, copyEvent(e))
		}
	}
	return out, nil
}

// Repos

func (m *Memory) CreateRepo(_ context.Context, repo *model.Repo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.repos {
		if r.EventID == repo.EventID && r.GithubURL == repo.GithubURL {
			return model.ErrDuplicate
		}
	}
	c := *repo
	m.repos[repo.ID] = &c
	return nil
}

func (m *Memory) GetRepo(_ context.Context, id string) (*model.Repo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	repo, ok := m.repos[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *repo
	return &c, nil
}

func (m *Memory) GetRepoByFullName(_ context.Context, fullName, eventID string) (*model.Repo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.repos {
		if r.FullName == fullName && (eventID == "" || r.EventID == eventID) {
			c := *r
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *Memory) GetRepoByURL(_ context.Context, eventID, githubURL string) (*model.Repo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.repos {
		if r.EventID == eventID && r.GithubURL == githubURL {
			c := *r
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *Memory) UpdateRepo(_ context.Context, repo *model.Repo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.repos[repo.ID]; !ok {
		return model.ErrNotFound
	}
	repo.UpdatedAt = time.Now().UTC()
	c := *repo
	m.repos[repo.ID] = &c
	return nil
}

func (m *Memory) DeleteReposByEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.repos {
		if r.EventID == eventID {
			delete(m.repos, id)
		}
	}
	return nil
}

// Commits

func (m *Memory) CreateCommit(_ context.Context, commit *model.Commit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.commits[commit.SHA]; ok {
		return model.ErrDuplicate
	}
	m.commits[commit.SHA] = copyCommit(commit)
	return nil
}

func (m *Memory) GetCommitBySHA(_ context.Context, sha string) (*model.Commit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	commit, ok := m.commits[sha]
	if !ok {
		return nil, model.ErrNotFound
	}
	return copyCommit(commit), nil
}

func (m *Memory) UpdateCommit(_ context.Context, commit *model.Commit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.commits[commit.SHA]; !ok {
		return model.ErrNotFound
	}
	m.commits[commit.SHA] = copyCommit(commit)
	return nil
}

func (m *Memory) CountCommitsByRepo(_ context.Context, eventID, repoID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.commits {
		if c.EventID == eventID && c.RepoID == repoID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListValidCommits(_ context.Context, eventID, userID string) ([]*model.Commit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Commit
	for _, c := range m.commits {
		if c.EventID == eventID && c.UserID == userID && c.IsValid {
			out = append(out, copyCommit(c))
		}
	}
	return out, nil
}

func (m *Memory) ListCommitsByEvent(_ context.Context, eventID string, limit int) ([]*model.Commit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Commit
	for _, c := range m.commits {
		if c.EventID == eventID {
			out = append(out, copyCommit(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) DeleteCommitsByEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sha, c := range m.commits {
		if c.EventID == eventID {
			delete(m.commits, sha)
		}
	}
	return nil
}

// Scores

func (m *Memory) CreateScore(_ context.Context, score *model.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scoreKey(score.EventID, score.UserID)
	if _, ok := m.scores[key]; ok {
		return model.ErrDuplicate
	}
	m.scores[key] = copyScore(score)
	return nil
}

func (m *Memory) GetScore(_ context.Context, eventID, userID string) (*model.Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	score, ok := m.scores[scoreKey(eventID, userID)]
	if !ok {
		return nil, model.ErrNotFound
	}
	return copyScore(score), nil
}

func (m *Memory) UpdateScore(_ context.Context, score *model.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scoreKey(score.EventID, score.UserID)
	if _, ok := m.scores[key]; !ok {
		return model.ErrNotFound
	}
	score.LastUpdated = time.Now().UTC()
	m.scores[key] = copyScore(score)
	return nil
}

func (m *Memory) ListScoresByEvent(_ context.Context, eventID string) ([]*model.Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Score
	for _, s := range m.scores {
		if s.EventID == eventID {
			out = append(out, copyScore(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalScore > out[j].TotalScore })
	return out, nil
}

func (m *Memory) DeleteScoresByEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, s := range m.scores {
		if s.EventID == eventID {
			delete(m.scores, key)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close(context.Context) error { return nil }
