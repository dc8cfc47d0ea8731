package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// stagingDir lives inside each bucket directory; the leading dot keeps it out
// of the bucket's id namespace, which validateBucket reserves.
const stagingDir = ".staging"

// LocalStorage keeps blobs on the local filesystem, one directory per bucket.
// Promote is an os.Rename, so staged and final locations share a filesystem
// and promotion is atomic.
type LocalStorage struct {
	root string
}

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

// NewLocal creates a filesystem-backed Storage rooted at dir, creating it if
// necessary.
func NewLocal(dir string) (*LocalStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty root directory", ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create root: %v", ErrUnavailable, err)
	}
	return &LocalStorage{root: dir}, nil
}

func (s *LocalStorage) stagingPath(bucket string, id int64) string {
	return filepath.Join(s.root, bucket, stagingDir, strconv.FormatInt(id, 10))
}

func (s *LocalStorage) finalPath(bucket string, id int64) string {
	return filepath.Join(s.root, bucket, strconv.FormatInt(id, 10))
}

// Stage writes the payload to the bucket's staging directory.
func (s *LocalStorage) Stage(_ context.Context, bucket string, id int64, r io.Reader) (int64, error) {
	if err := validateBucket(bucket); err != nil {
		return 0, err
	}

	path := s.stagingPath(bucket, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("%w: create staging dir: %v", ErrUnavailable, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: create staged blob: %v", ErrUnavailable, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: write staged blob: %v", ErrUnavailable, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: close staged blob: %v", ErrUnavailable, err)
	}

	return n, nil
}

// Promote renames the staged blob into the bucket directory.
func (s *LocalStorage) Promote(_ context.Context, bucket string, id int64) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}

	if err := os.Rename(s.stagingPath(bucket, id), s.finalPath(bucket, id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: staged blob %d in bucket %q", ErrBlobNotFound, id, bucket)
		}
		return fmt.Errorf("%w: promote blob: %v", ErrUnavailable, err)
	}
	return nil
}

// Discard removes a staged blob if present.
func (s *LocalStorage) Discard(_ context.Context, bucket string, id int64) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}

	if err := os.Remove(s.stagingPath(bucket, id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: discard staged blob: %v", ErrUnavailable, err)
	}
	return nil
}

// Delete removes a promoted blob.
func (s *LocalStorage) Delete(_ context.Context, bucket string, id int64) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}

	if err := os.Remove(s.finalPath(bucket, id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: blob %d in bucket %q", ErrBlobNotFound, id, bucket)
		}
		return fmt.Errorf("%w: delete blob: %v", ErrUnavailable, err)
	}
	return nil
}

// Open returns a reader over a promoted blob and its size on disk.
func (s *LocalStorage) Open(_ context.Context, bucket string, id int64) (io.ReadCloser, int64, error) {
	if err := validateBucket(bucket); err != nil {
		return nil, 0, err
	}

	f, err := os.Open(s.finalPath(bucket, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: blob %d in bucket %q", ErrBlobNotFound, id, bucket)
		}
		return nil, 0, fmt.Errorf("%w: open blob: %v", ErrUnavailable, err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("%w: stat blob: %v", ErrUnavailable, err)
	}

	return f, stat.Size(), nil
}
