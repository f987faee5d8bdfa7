package events

import "github.com/maxbolgarin/errm"

var (
	ErrInvalidName            = errm.New("event name must be 3-200 characters")
	ErrInvalidDuration        = errm.New("duration must be 1-720 hours")
	ErrInvalidMaxParticipants = errm.New("max participants must be 1-1000")

	ErrEventNotWaiting = errm.New("event is not accepting participants")
	ErrEventNotRunning = errm.New("event is not running")
	ErrEventRunning    = errm.New("event is still running")
	ErrEventFull       = errm.New("event is full")
	ErrAlreadyJoined   = errm.New("user already joined this event")
	ErrInvalidRepoURL  = errm.New("invalid GitHub repository URL")
	ErrRepoTaken       = errm.New("repository already registered in this event")
	ErrNoParticipants  = errm.New("event has no participants")
)
