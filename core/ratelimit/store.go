package ratelimit

import (
	"context"
	"time"
)

// State is the window snapshot for one composite key. It lives only in the
// store; there is no deletion path other than overwrite on rollover.
type State struct {
	// WindowStart marks the start of the current window.
	WindowStart time.Time
	// RequestCount is the number of requests admitted since WindowStart,
	// including the request currently being decided when it is admitted.
	RequestCount int64
	// BytesSent is the cumulative bytes admitted since WindowStart.
	BytesSent int64
}

// Verdict is the store's decision for a single request.
type Verdict int64

// Verdict values are shared with the Redis script; do not renumber.
const (
	VerdictAdmitted         Verdict = 1
	VerdictRequestsExceeded Verdict = 2
	VerdictBytesExceeded    Verdict = 3
)

// Store applies one request against the window state of a key. The whole
// read-modify-write must be atomic with respect to concurrent calls for the
// same key; calls for different keys must not lose updates either but may
// proceed independently.
//
// The returned State reflects the window after the decision: on admission the
// counters include the current request, on denial they are unchanged.
type Store interface {
	Take(ctx context.Context, key string, bytes int64, limits Limits, now time.Time) (State, Verdict, error)
}
