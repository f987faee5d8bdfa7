package model

import "time"

// EventStatus represents the lifecycle state of an event.
type EventStatus string

const (
	EventWaiting   EventStatus = "waiting"
	EventRunning   EventStatus = "running"
	EventFinished  EventStatus = "finished"
	EventCancelled EventStatus = "cancelled"
)

// Event is a time-boxed hackathon competition instance.
type Event struct {
	ID          string `json:"id" bson:"_id"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	CreatedBy   string `json:"created_by" bson:"created_by"`

	Status              EventStatus   `json:"status" bson:"status"`
	MaxParticipants     int           `json:"max_participants" bson:"max_participants"`
	CurrentParticipants int           `json:"current_participants" bson:"current_participants"`
	Participants        []Participant `json:"participants" bson:"participants"`

	// DurationHours is fixed at creation; EndTime = StartTime + DurationHours.
	DurationHours int        `json:"duration_hours" bson:"duration_hours"`
	StartTime     *time.Time `json:"start_time,omitempty" bson:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty" bson:"end_time,omitempty"`

	TotalCommits     int    `json:"total_commits" bson:"total_commits"`
	DiscordChannelID string `json:"discord_channel_id,omitempty" bson:"discord_channel_id,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Participant is one user/repo registration inside an event.
type Participant struct {
	UserID   string    `json:"user_id" bson:"user_id"`
	Username string    `json:"username" bson:"username"`
	RepoID   string    `json:"repo_id" bson:"repo_id"`
	JoinedAt time.Time `json:"joined_at" bson:"joined_at"`
}

// IsFull reports whether the event has no remaining slots.
func (e *Event) IsFull() bool {
	return e.CurrentParticipants >= e.MaxParticipants
}

// HasParticipant reports whether the user already joined the event.
func (e *Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// IsExpired reports whether a running event is past its end time.
func (e *Event) IsExpired(now time.Time) bool {
	if e.EndTime == nil {
		return false
	}
	return now.After(*e.EndTime)
}
