package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with a mutex-guarded map. State is process-local,
// so it enforces limits for a single instance only; use RedisStore when several
// gateways must share budgets. Intended for tests and single-instance
// deployments.
//
// There is deliberately no cleanup goroutine: an expired window is detected and
// overwritten on the key's next access, never eagerly.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*State)}
}

// Take implements Store.
func (ms *MemoryStore) Take(_ context.Context, key string, bytes int64, limits Limits, now time.Time) (State, Verdict, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	st, ok := ms.windows[key]
	if !ok || now.Sub(st.WindowStart) >= limits.ResetAfter {
		st = &State{WindowStart: now, RequestCount: 1, BytesSent: bytes}
		ms.windows[key] = st
		return *st, VerdictAdmitted, nil
	}

	if st.RequestCount >= limits.RequestLimit {
		return *st, VerdictRequestsExceeded, nil
	}
	if limits.ByteLimit > 0 && st.BytesSent+bytes > limits.ByteLimit {
		return *st, VerdictBytesExceeded, nil
	}

	st.RequestCount++
	st.BytesSent += bytes
	return *st, VerdictAdmitted, nil
}

// Len reports the number of live windows. Expired windows that have not been
// touched since expiry still count, since expiry is lazy.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.windows)
}
