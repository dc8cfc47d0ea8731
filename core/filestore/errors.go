package filestore

import (
	"errors"
	"fmt"
)

// Package-level error definitions for the content store.
var (
	ErrNotFound           = errors.New("file not found")
	ErrPolicyViolation    = errors.New("content type not allowed in this bucket")
	ErrContentExists      = errors.New("canonical content already recorded")
	ErrCatalogUnavailable = errors.New("file catalog unavailable")
	ErrMissingBlob        = errors.New("catalog record references missing blob")
)

// ValidationError reports a rejected ingest argument. It is a client error,
// distinct from the infrastructure sentinels above.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
