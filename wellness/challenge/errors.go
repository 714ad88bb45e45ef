package challenge

import "errors"

var (
	// ErrAlreadyJoined is returned when the (user, challenge) membership exists.
	ErrAlreadyJoined = errors.New("challenge already joined")
	// ErrNotFound is returned for an unknown challenge or a missing membership.
	ErrNotFound = errors.New("challenge not found")
	// ErrInvalidProgress is returned for a negative progress value.
	ErrInvalidProgress = errors.New("progress must be a non-negative integer")
	// ErrAlreadyCompleted is returned when an update would move a completed
	// membership back to active.
	ErrAlreadyCompleted = errors.New("challenge already completed")
	// ErrInvalidChallenge is returned by Catalog.Create for a malformed definition.
	ErrInvalidChallenge = errors.New("challenge needs a title and a positive total_days")
)
