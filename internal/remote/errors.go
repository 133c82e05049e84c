package remote

import (
	"errors"
	"fmt"
)

// ErrStaleWriteSkipped signals that the debounce window or the
// re-entrancy guard dropped a write. The next round's write carries
// the cumulative state forward, so nothing is permanently lost.
var ErrStaleWriteSkipped = errors.New("stale write skipped")

// RemoteWriteError reports a failed write phase. Local state is
// unaffected; callers surface it as a transient warning.
type RemoteWriteError struct {
	Phase int
	Err   error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote write failed (phase %d): %v", e.Phase, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// RemoteReadError reports a failed snapshot or round read. Local state
// continues unsynced until recovery.
type RemoteReadError struct {
	Op  string
	Err error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("remote read failed (%s): %v", e.Op, e.Err)
}

func (e *RemoteReadError) Unwrap() error { return e.Err }
