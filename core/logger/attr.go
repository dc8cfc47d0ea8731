package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit
// nil checks, following the principle of making zero values useful.

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Bucket creates an attribute for the logical content namespace.
func Bucket(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("bucket", name)
}

// FileID creates an attribute for generator-issued file identifiers.
func FileID(id int64) slog.Attr {
	return slog.Int64("file_id", id)
}

// ContentHash creates an attribute for content digests.
func ContentHash(hash string) slog.Attr {
	if hash == "" {
		return slog.Attr{}
	}
	return slog.String("content_hash", hash)
}

// ContentType creates an attribute for detected MIME types.
func ContentType(ct string) slog.Attr {
	if ct == "" {
		return slog.Attr{}
	}
	return slog.String("content_type", ct)
}

// ClientKey creates an attribute for the opaque rate-limit client identity.
func ClientKey(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("client_key", key)
}

// RatelimitKey creates an attribute for composite rate-limit window keys.
func RatelimitKey(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("ratelimit_key", key)
}

// BytesIn creates an attribute for incoming bytes.
func BytesIn(n int64) slog.Attr {
	return slog.Int64("bytes_in", n)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}
