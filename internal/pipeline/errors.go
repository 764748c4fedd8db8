package pipeline

import "errors"

var (
	// ErrAlreadyRunning is returned when another instance holds the lock.
	ErrAlreadyRunning = errors.New("another instance is already running")

	// ErrCleanupIncomplete indicates a transfer succeeded but some local
	// content could not be moved to the trash.
	ErrCleanupIncomplete = errors.New("cleanup incomplete")
)
