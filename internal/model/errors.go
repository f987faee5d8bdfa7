package model

import "github.com/maxbolgarin/errm"

var (
	// ErrNotFound is returned by storage when a record does not exist.
	ErrNotFound = errm.New("not found")

	// ErrDuplicate is returned by storage when a uniqueness constraint is
	// violated (SHA, (event,user) score, (event,githubUrl) repo).
	ErrDuplicate = errm.New("duplicate record")

	// ErrScoreLocked is returned when a mutation reaches a locked score.
	ErrScoreLocked = errm.New("score is locked")
)
