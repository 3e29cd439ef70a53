package library

import "errors"

var (
	// ErrDisabled is returned by Open when library.enabled is false.
	ErrDisabled = errors.New("library disabled")
	// ErrNotFound means no entry matched the requested ID.
	ErrNotFound = errors.New("vibe not found")
	// ErrAmbiguous means an ID prefix matched more than one entry.
	ErrAmbiguous = errors.New("ambiguous vibe id")
	// ErrDuplicate means an identical vibe is already stored.
	ErrDuplicate = errors.New("vibe already in library")
	// ErrLocked means another process held the write lock past the timeout.
	ErrLocked = errors.New("library locked by another process")
)
