package repository

import "errors"

// Sentinel errors translated to HTTP status codes at the API boundary.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates the record changed between read and write
	// (optimistic concurrency). Callers should re-check existence and
	// retry or report the conflict.
	ErrConflict = errors.New("record was modified concurrently")

	// ErrDuplicateTrack indicates a membership already exists for the
	// (playlist, track) pair.
	ErrDuplicateTrack = errors.New("track is already in playlist")
)
