// Package ratelimit provides the fixed-window, byte-budgeted rate limiter that
// gates every upload and fetch passing through the gateway.
//
// Each request is attributed to a window identified by the composite key
// "ratelimit:<client>:<class>-<bucket>", where class is one of the three
// configured limiter classes (assets, attachments, fetch_file). A window tracks
// the moment it started, how many requests it has admitted, and how many bytes
// it has accepted. When the class's ResetAfter has elapsed the next access
// atomically reinitializes the window; there is no background sweep and no TTL,
// expiry is observed lazily on the key's next use.
//
// # Admission Algorithm
//
// For a request of n bytes:
//
//  1. n greater than the class byte limit is denied outright (ErrFileTooLarge)
//     without touching the store, since no window state could ever admit it.
//  2. An absent window is created as {start: now, requests: 1, bytes: n} and
//     the request is admitted.
//  3. An expired window is reinitialized the same way (window rollover).
//  4. Inside the window, the request limit is checked first (ErrRateLimited),
//     then the byte budget (ErrBytesRateLimited); otherwise both counters are
//     incremented atomically and the request is admitted.
//
// Every outcome, admitted or denied, carries the full window snapshot so the
// caller can surface it as response headers; see Result.Headers.
//
// # Storage Backends
//
// The Store interface has two implementations:
//
//   - RedisStore: shared cache for multi-instance deployments. The whole
//     read-modify-write cycle runs as a single Lua script, so concurrent bursts
//     against the same key cannot lose updates.
//   - MemoryStore: mutex-guarded map for tests and single-instance use.
//
// A store failure is an infrastructure failure: Check returns an error wrapping
// ErrStoreUnavailable and the request must not proceed. The limiter never fails
// open, as a bypassed limiter defeats its own purpose.
//
// # Usage
//
//	store := ratelimit.NewRedisStore(redisClient)
//	limiter, err := ratelimit.New(store, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := limiter.Check(ctx, ratelimit.ClassAttachments, bucket, clientIP, size)
//	if err != nil {
//		// infrastructure failure, fail the request
//	}
//	for k, v := range result.Headers() {
//		w.Header().Set(k, v)
//	}
//	if !result.Allowed() {
//		// result.Err() is ErrRateLimited, ErrBytesRateLimited or ErrFileTooLarge;
//		// result.RetryAfterMS() tells the client when the window resets
//	}
package ratelimit
