package mediaprobe

import "errors"

// Package-level error definitions for media probing.
var (
	ErrFFProbeUnavailable = errors.New("ffprobe binary not available")
	ErrProbeFailed        = errors.New("media probe failed")
)
