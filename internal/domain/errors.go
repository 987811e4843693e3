package domain

import "errors"

// Sentinel errors of the sync core. Callers match with errors.Is.
var (
	// ErrPersistence is returned when the local store cannot be read or written.
	ErrPersistence = errors.New("local persistence failure")

	// ErrRemote is returned when a gateway call fails during a direct write.
	ErrRemote = errors.New("remote operation failed")

	// ErrSyncHalted is returned when a drain stops on a failing record.
	ErrSyncHalted = errors.New("sync halted")

	// ErrSyncInProgress is returned when a drain is requested while one is running.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrMalformedRecord is returned when a queued payload does not fit its tag.
	ErrMalformedRecord = errors.New("malformed queue record")
)
