package filestore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/filevault/core/blob"
	"github.com/dmitrymomot/filevault/core/idgen"
	"github.com/dmitrymomot/filevault/core/logger"
	"github.com/dmitrymomot/filevault/core/mediaprobe"
)

// attachmentsBucket is exempt from the content-type policy; every other bucket
// only accepts the web-safe image types.
const attachmentsBucket = "attachments"

// defaultName replaces an empty display name on ingest.
const defaultName = "attachment"

// policyExempt lists the content types allowed outside the attachments bucket.
var policyExempt = map[string]struct{}{
	"image/gif":  {},
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Prober extracts content type and dimensions from a payload.
// *mediaprobe.Prober satisfies it.
type Prober interface {
	Probe(ctx context.Context, data []byte) (mediaprobe.Info, error)
}

// Store is the content store: ingestion, dedup and retrieval of file payloads
// across a catalog and blob storage.
type Store struct {
	gen     *idgen.Generator
	catalog Catalog
	blobs   blob.Storage
	prober  Prober
	buckets map[string]struct{}
	log     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBuckets replaces the default bucket allow-list.
func WithBuckets(buckets ...string) Option {
	return func(s *Store) {
		s.buckets = make(map[string]struct{}, len(buckets))
		for _, b := range buckets {
			s.buckets[b] = struct{}{}
		}
	}
}

// WithLogger sets the logger for store diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log.With(logger.Component("filestore"))
		}
	}
}

// New creates a Store. All four collaborators are required. The default
// bucket allow-list is attachments and assets.
func New(gen *idgen.Generator, catalog Catalog, blobs blob.Storage, prober Prober, opts ...Option) (*Store, error) {
	if gen == nil || catalog == nil || blobs == nil || prober == nil {
		return nil, errors.New("filestore: all collaborators are required")
	}

	s := &Store{
		gen:     gen,
		catalog: catalog,
		blobs:   blobs,
		prober:  prober,
		buckets: map[string]struct{}{attachmentsBucket: {}, "assets": {}},
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ingest stores a payload and returns its new record.
//
// The payload is staged, hashed, and deduplicated against the canonical record
// for its (hash, bucket): a hit produces a dedup record reusing the canonical
// content without re-probing; a miss probes the bytes, applies the bucket
// policy and promotes them as the new canonical record. Whatever the outcome,
// no catalog row is left referencing a missing blob.
func (s *Store) Ingest(ctx context.Context, data []byte, bucket, name string, spoiler bool) (*FileRecord, error) {
	if _, ok := s.buckets[bucket]; !ok {
		return nil, ValidationError{Field: "bucket", Reason: fmt.Sprintf("unknown bucket %q", bucket)}
	}
	if len(data) == 0 {
		return nil, ValidationError{Field: "file", Reason: "empty payload"}
	}
	if name == "" {
		name = defaultName
	}

	id := s.gen.Next()

	if _, err := s.blobs.Stage(ctx, bucket, id, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("stage payload: %w", err)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	canonical, err := s.catalog.FindByHash(ctx, hash, bucket)
	switch {
	case err == nil:
		// Duplicate payload: the staged copy is redundant.
		if err := s.blobs.Discard(ctx, bucket, id); err != nil {
			return nil, fmt.Errorf("discard duplicate payload: %w", err)
		}
		return s.insertDedup(ctx, id, name, spoiler, canonical)

	case errors.Is(err, ErrNotFound):
		// First sighting of this payload in this bucket.

	default:
		s.discardStaged(ctx, bucket, id)
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}

	if err := s.checkPolicy(bucket, mediaprobe.Sniff(data)); err != nil {
		s.discardStaged(ctx, bucket, id)
		return nil, err
	}

	info, err := s.prober.Probe(ctx, data)
	if err != nil {
		s.discardStaged(ctx, bucket, id)
		return nil, fmt.Errorf("probe payload: %w", err)
	}

	if err := s.blobs.Promote(ctx, bucket, id); err != nil {
		// Promote may have copied the final object before failing partway
		// (the S3 backend's copy-then-delete), so clean both locations.
		s.discardStaged(ctx, bucket, id)
		if derr := s.blobs.Delete(ctx, bucket, id); derr != nil && !errors.Is(derr, blob.ErrBlobNotFound) {
			s.log.ErrorContext(ctx, "orphaned blob after failed promote",
				logger.FileID(id), logger.Bucket(bucket), logger.Error(derr))
		}
		return nil, fmt.Errorf("promote payload: %w", err)
	}

	record := &FileRecord{
		ID:          id,
		ContentID:   id,
		Name:        name,
		ContentType: info.ContentType,
		ContentHash: hash,
		Bucket:      bucket,
		Spoiler:     spoiler,
	}
	if info.Dimensions != nil {
		w, h := info.Dimensions.Width, info.Dimensions.Height
		record.Width, record.Height = &w, &h
	}

	err = s.catalog.Insert(ctx, record)
	switch {
	case err == nil:
		s.log.InfoContext(ctx, "stored new content",
			logger.FileID(id), logger.Bucket(bucket),
			logger.ContentType(info.ContentType), logger.BytesIn(int64(len(data))))
		return record, nil

	case errors.Is(err, ErrContentExists):
		// A concurrent identical ingest won the canonical insert. Yield to
		// the winner: drop our promoted blob and record a dedup row instead.
		if err := s.blobs.Delete(ctx, bucket, id); err != nil {
			return nil, fmt.Errorf("drop losing payload: %w", err)
		}
		winner, err := s.catalog.FindByHash(ctx, hash, bucket)
		if err != nil {
			return nil, fmt.Errorf("read canonical record after conflict: %w", err)
		}
		return s.insertDedup(ctx, id, name, spoiler, winner)

	default:
		if derr := s.blobs.Delete(ctx, bucket, id); derr != nil {
			s.log.ErrorContext(ctx, "orphaned blob after failed insert",
				logger.FileID(id), logger.Bucket(bucket), logger.Error(derr))
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}
}

// Lookup returns the record for (id, bucket).
func (s *Store) Lookup(ctx context.Context, id int64, bucket string) (*FileRecord, error) {
	return s.catalog.FindByID(ctx, id, bucket)
}

// Open returns a record together with a reader over its payload and the
// payload size. The reader streams the canonical blob, so dedup records serve
// the same bytes as their canonical twin.
func (s *Store) Open(ctx context.Context, id int64, bucket string) (*FileRecord, io.ReadCloser, int64, error) {
	record, err := s.catalog.FindByID(ctx, id, bucket)
	if err != nil {
		return nil, nil, 0, err
	}

	r, size, err := s.blobs.Open(ctx, bucket, record.ContentID)
	if err != nil {
		if errors.Is(err, blob.ErrBlobNotFound) {
			// A catalog row without its blob means ingestion atomicity was
			// broken somewhere; make it impossible to miss.
			s.log.ErrorContext(ctx, "catalog record references missing blob",
				logger.FileID(id), logger.Bucket(bucket), logger.ContentHash(record.ContentHash))
			return nil, nil, 0, fmt.Errorf("%w: file %d in bucket %q", ErrMissingBlob, id, bucket)
		}
		return nil, nil, 0, fmt.Errorf("open payload: %w", err)
	}

	return record, r, size, nil
}

// insertDedup writes a dedup record borrowing the canonical record's content.
func (s *Store) insertDedup(ctx context.Context, id int64, name string, spoiler bool, canonical *FileRecord) (*FileRecord, error) {
	record := &FileRecord{
		ID:          id,
		ContentID:   canonical.ContentID,
		Name:        name,
		ContentType: canonical.ContentType,
		ContentHash: canonical.ContentHash,
		Bucket:      canonical.Bucket,
		Spoiler:     spoiler,
		Width:       canonical.Width,
		Height:      canonical.Height,
	}
	if err := s.catalog.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("insert dedup record: %w", err)
	}

	s.log.InfoContext(ctx, "deduplicated upload",
		logger.FileID(id), logger.Bucket(canonical.Bucket), logger.ContentHash(canonical.ContentHash))
	return record, nil
}

// checkPolicy enforces the bucket content policy on a sniffed type.
func (s *Store) checkPolicy(bucket, contentType string) error {
	if bucket == attachmentsBucket {
		return nil
	}

	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if _, ok := policyExempt[base]; !ok {
		return fmt.Errorf("%w: %s in bucket %q", ErrPolicyViolation, base, bucket)
	}
	return nil
}

// discardStaged is best-effort cleanup on the failure paths; the staged blob
// was never visible, so a leak here is log-worthy but not an error.
func (s *Store) discardStaged(ctx context.Context, bucket string, id int64) {
	if err := s.blobs.Discard(ctx, bucket, id); err != nil {
		s.log.ErrorContext(ctx, "leaked staged blob",
			logger.FileID(id), logger.Bucket(bucket), logger.Error(err))
	}
}
