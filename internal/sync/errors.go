package sync

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a sync or processing call arrives
// before the runtime's initialization gate has completed.
var ErrNotInitialized = errors.New("sync runtime not initialized")

// MissingDependencyError means a dependent entity lacks a server id at
// the point it is needed: an association whose context or task has not
// synced yet, or a remote row whose predecessor was never merged. The
// processor treats it as an ordinary retryable failure.
type MissingDependencyError struct {
	EntityType string
	EntityID   string
	Missing    string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency for %s %s: %s", e.EntityType, e.EntityID, e.Missing)
}

// SyncAbortedError means the initial sync's atomic unit failed and was
// rolled back; the local store is exactly as it was before the attempt.
type SyncAbortedError struct {
	Err error
}

func (e *SyncAbortedError) Error() string {
	return fmt.Sprintf("initial sync aborted: %v", e.Err)
}

func (e *SyncAbortedError) Unwrap() error {
	return e.Err
}
