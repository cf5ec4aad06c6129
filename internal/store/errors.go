package store

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrLockHeld means another process holds the per-user rebuild lock.
	ErrLockHeld = errors.New("rebuild lock held")
)
