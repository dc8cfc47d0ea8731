package blob

import (
	"context"
	"io"
	"strings"
)

// Storage persists file payloads keyed by (bucket, id). Implementations must
// be safe for concurrent use.
type Storage interface {
	// Stage writes the payload to a staging key and reports the number of
	// bytes written. A staged blob is invisible to Open until promoted.
	Stage(ctx context.Context, bucket string, id int64, r io.Reader) (int64, error)

	// Promote moves a staged blob to its final key. Promoting an id that was
	// never staged returns ErrBlobNotFound.
	Promote(ctx context.Context, bucket string, id int64) error

	// Discard drops a staged blob. Discarding an absent id is a no-op, so
	// cleanup paths can run unconditionally.
	Discard(ctx context.Context, bucket string, id int64) error

	// Delete removes a promoted blob. Returns ErrBlobNotFound if absent.
	Delete(ctx context.Context, bucket string, id int64) error

	// Open returns a reader over a promoted blob together with its size.
	// The caller owns the reader and must close it.
	Open(ctx context.Context, bucket string, id int64) (io.ReadCloser, int64, error)
}

// validateBucket rejects names that would escape the storage root or collide
// with internal keys. Buckets are single path segments.
func validateBucket(bucket string) error {
	if bucket == "" ||
		bucket == "." || bucket == ".." ||
		strings.ContainsAny(bucket, `/\`) ||
		strings.HasPrefix(bucket, ".") {
		return ErrInvalidBucket
	}
	return nil
}
