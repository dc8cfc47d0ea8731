package ratelimit

import "strconv"

// Header names surfaced with every limiter outcome, success or failure.
// Callers attach them to the HTTP response regardless of admission result.
const (
	HeaderReset        = "X-Ratelimit-Reset"
	HeaderMax          = "X-Ratelimit-Max"
	HeaderBytesLimit   = "X-Ratelimit-Bytes-Limit"
	HeaderLastReset    = "X-Ratelimit-Last-Reset"
	HeaderRequestCount = "X-Ratelimit-Request-Count"
	HeaderSentBytes    = "X-Ratelimit-Sent-Bytes"
)

// Result reports a limiter decision together with the window snapshot backing
// it. Construct only through Limiter.Check.
type Result struct {
	// Limits is the static budget of the class the request was checked against.
	Limits Limits
	// State is the window state after the decision. For an ErrFileTooLarge
	// denial the state is zero, since no store access takes place.
	State State

	reason error
	nowMS  int64
}

// Allowed reports whether the request was admitted.
func (r *Result) Allowed() bool {
	return r.reason == nil
}

// Err returns the denial reason: ErrRateLimited, ErrBytesRateLimited or
// ErrFileTooLarge. Nil when the request was admitted.
func (r *Result) Err() error {
	return r.reason
}

// RetryAfterMS returns the number of milliseconds until the current window
// resets. Zero when the request was admitted or when no window state exists.
func (r *Result) RetryAfterMS() int64 {
	if r.reason == nil || r.State.WindowStart.IsZero() {
		return 0
	}
	retry := r.State.WindowStart.UnixMilli() + r.Limits.ResetAfter.Milliseconds() - r.nowMS
	if retry < 0 {
		return 0
	}
	return retry
}

// BytesLeft returns the remaining byte budget of the current window, clamped
// to zero. Meaningless for classes without byte accounting.
func (r *Result) BytesLeft() int64 {
	left := r.Limits.ByteLimit - r.State.BytesSent
	if left < 0 {
		return 0
	}
	return left
}

// Headers returns the six observable window headers carried by every response.
func (r *Result) Headers() map[string]string {
	var lastReset int64
	if !r.State.WindowStart.IsZero() {
		lastReset = r.State.WindowStart.UnixMilli()
	}
	return map[string]string{
		HeaderReset:        strconv.FormatInt(r.Limits.ResetAfter.Milliseconds(), 10),
		HeaderMax:          strconv.FormatInt(r.Limits.RequestLimit, 10),
		HeaderBytesLimit:   strconv.FormatInt(r.Limits.ByteLimit, 10),
		HeaderLastReset:    strconv.FormatInt(lastReset, 10),
		HeaderRequestCount: strconv.FormatInt(r.State.RequestCount, 10),
		HeaderSentBytes:    strconv.FormatInt(r.State.BytesSent, 10),
	}
}
