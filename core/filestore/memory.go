package filestore

import (
	"context"
	"fmt"
	"sync"
)

type recordKey struct {
	id     int64
	bucket string
}

type contentKey struct {
	hash   string
	bucket string
}

// MemoryCatalog is an in-memory Catalog for tests and single-process
// deployments. Safe for concurrent use.
type MemoryCatalog struct {
	mu        sync.Mutex
	records   map[recordKey]FileRecord
	canonical map[contentKey]recordKey
}

// Compile-time check that MemoryCatalog implements Catalog.
var _ Catalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		records:   make(map[recordKey]FileRecord),
		canonical: make(map[contentKey]recordKey),
	}
}

// Insert stores a record, enforcing canonical uniqueness per (hash, bucket).
func (c *MemoryCatalog) Insert(_ context.Context, record *FileRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := recordKey{id: record.ID, bucket: record.Bucket}
	if _, ok := c.records[key]; ok {
		return fmt.Errorf("%w: duplicate id %d in bucket %q", ErrContentExists, record.ID, record.Bucket)
	}

	ck := contentKey{hash: record.ContentHash, bucket: record.Bucket}
	if record.Canonical() {
		if _, ok := c.canonical[ck]; ok {
			return fmt.Errorf("%w: hash %s in bucket %q", ErrContentExists, record.ContentHash, record.Bucket)
		}
		c.canonical[ck] = key
	}

	c.records[key] = *record
	return nil
}

// FindByHash returns the canonical record for (hash, bucket).
func (c *MemoryCatalog) FindByHash(_ context.Context, hash, bucket string) (*FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key, ok := c.canonical[contentKey{hash: hash, bucket: bucket}]
	if !ok {
		return nil, ErrNotFound
	}
	record := c.records[key]
	return &record, nil
}

// FindByID returns the record for (id, bucket).
func (c *MemoryCatalog) FindByID(_ context.Context, id int64, bucket string) (*FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.records[recordKey{id: id, bucket: bucket}]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

// Len reports the number of stored records. Test helper.
func (c *MemoryCatalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
