package notify

import "github.com/onecommit/onecommit/internal/model"

var _ model.Notifier = Noop{}

// Noop discards every notification. Used when Discord is not configured.
type Noop struct{}

func (Noop) CommitProcessed(*model.Event, *model.Commit, *model.Repo)      {}
func (Noop) EventStarted(*model.Event)                                     {}
func (Noop) EventFinished(*model.Event, []*model.Score)                    {}
func (Noop) AchievementEarned(*model.Event, string, model.AchievementType) {}
