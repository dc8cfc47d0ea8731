package filestore

import "context"

// Catalog persists FileRecords. Implementations must enforce at most one
// canonical record per (content hash, bucket): inserting a second canonical
// record for the same pair fails with ErrContentExists. Dedup records never
// conflict.
type Catalog interface {
	// Insert stores a new record. Returns ErrContentExists when a canonical
	// record for the same (hash, bucket) already exists.
	Insert(ctx context.Context, record *FileRecord) error

	// FindByHash returns the canonical record for (hash, bucket), or
	// ErrNotFound.
	FindByHash(ctx context.Context, hash, bucket string) (*FileRecord, error)

	// FindByID returns the record with the given id in the given bucket, or
	// ErrNotFound. The bucket must match exactly; ids are not global handles.
	FindByID(ctx context.Context, id int64, bucket string) (*FileRecord, error)
}
