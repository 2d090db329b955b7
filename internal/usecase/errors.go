package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	// ErrConflict means the caller lost a race: auction state changed between
	// read and write. The caller may resubmit against the committed state.
	ErrConflict              = errors.New("state conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
