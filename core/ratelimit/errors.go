package ratelimit

import "errors"

// Package-level error definitions for rate limiter operations.
// Use errors.Is() to distinguish denial reasons from infrastructure failures.
var (
	ErrInvalidConfig    = errors.New("invalid ratelimit configuration")
	ErrUnknownClass     = errors.New("unknown ratelimit class")
	ErrRateLimited      = errors.New("request limit exceeded for window")
	ErrBytesRateLimited = errors.New("byte budget exceeded for window")
	ErrFileTooLarge     = errors.New("request exceeds maximum byte limit")
	ErrStoreUnavailable = errors.New("ratelimit store unavailable")
)
