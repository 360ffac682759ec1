package engine

import "errors"

var (
	// ErrInvalidTransition is returned when accept/decline/cancel or a
	// completion is attempted from a terminal or otherwise wrong state.
	ErrInvalidTransition = errors.New("invalid challenge transition")

	// ErrUnauthorizedActor is returned when the acting user holds the wrong
	// role for the requested transition, or is not a participant at all.
	ErrUnauthorizedActor = errors.New("actor not permitted for this transition")

	// ErrNotFound is returned by callers when the referenced challenge or
	// habit does not exist.
	ErrNotFound = errors.New("not found")
)
