package blob

import "errors"

// Package-level error definitions for blob storage.
var (
	ErrInvalidConfig = errors.New("invalid blob storage config")
	ErrInvalidBucket = errors.New("invalid bucket name")
	ErrBlobNotFound  = errors.New("blob not found")
	ErrUnavailable   = errors.New("blob storage unavailable")
)
