package filestore_test

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/core/blob"
	"github.com/dmitrymomot/filevault/core/filestore"
	"github.com/dmitrymomot/filevault/core/idgen"
	"github.com/dmitrymomot/filevault/core/mediaprobe"
)

// gifData is a header-only GIF payload with the given logical screen size.
func gifData(width, height int) []byte {
	return []byte{
		'G', 'I', 'F', '8', '9', 'a',
		byte(width), byte(width >> 8),
		byte(height), byte(height >> 8),
		0x00, 0x00, 0x00,
	}
}

// mp4Data sniffs as video/mp4 without being playable.
func mp4Data() []byte {
	return []byte{
		0x00, 0x00, 0x00, 0x10,
		'f', 't', 'y', 'p',
		'i', 's', 'o', 'm',
		0x00, 0x00, 0x02, 0x00,
	}
}

// countingProber counts probe invocations to verify dedup skips probing.
type countingProber struct {
	inner filestore.Prober
	calls atomic.Int32
}

func (p *countingProber) Probe(ctx context.Context, data []byte) (mediaprobe.Info, error) {
	p.calls.Add(1)
	return p.inner.Probe(ctx, data)
}

// failingPromoteStorage makes every promotion fail after staging succeeds.
type failingPromoteStorage struct {
	blob.Storage
}

func (failingPromoteStorage) Promote(context.Context, string, int64) error {
	return errors.New("disk full")
}

type testStore struct {
	store   *filestore.Store
	catalog *filestore.MemoryCatalog
	prober  *countingProber
	root    string
}

func newTestStore(t *testing.T, opts ...filestore.Option) testStore {
	t.Helper()

	gen, err := idgen.New(idgen.Config{InstanceSalt: "filestore-test"})
	require.NoError(t, err)

	root := t.TempDir()
	blobs, err := blob.NewLocal(root)
	require.NoError(t, err)

	catalog := filestore.NewMemoryCatalog()
	prober := &countingProber{inner: mediaprobe.New()}

	store, err := filestore.New(gen, catalog, blobs, prober, opts...)
	require.NoError(t, err)

	return testStore{store: store, catalog: catalog, prober: prober, root: root}
}

// storedFiles counts regular files under the blob root, staging included.
func storedFiles(t *testing.T, root string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestStore_Ingest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stores new content with dimensions", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		record, err := ts.store.Ingest(ctx, gifData(120, 80), "attachments", "cat.gif", false)
		require.NoError(t, err)

		assert.True(t, record.Canonical())
		assert.Equal(t, "cat.gif", record.Name)
		assert.Equal(t, "image/gif", record.ContentType)
		assert.NotEmpty(t, record.ContentHash)
		require.NotNil(t, record.Width)
		require.NotNil(t, record.Height)
		assert.Equal(t, 120, *record.Width)
		assert.Equal(t, 80, *record.Height)
	})

	t.Run("identical payload deduplicates", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)
		payload := gifData(64, 64)

		first, err := ts.store.Ingest(ctx, payload, "attachments", "one.gif", false)
		require.NoError(t, err)

		second, err := ts.store.Ingest(ctx, payload, "attachments", "two.gif", true)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, first.ID, second.ContentID)
		assert.False(t, second.Canonical())
		assert.Equal(t, first.ContentHash, second.ContentHash)
		assert.Equal(t, first.ContentType, second.ContentType)
		assert.Equal(t, first.Width, second.Width)
		assert.Equal(t, "two.gif", second.Name)
		assert.True(t, second.Spoiler)

		assert.Equal(t, int32(1), ts.prober.calls.Load(), "duplicate must not be re-probed")
		assert.Equal(t, 1, storedFiles(t, ts.root), "duplicate must not be re-stored")
		assert.Equal(t, 2, ts.catalog.Len())
	})

	t.Run("same payload in another bucket is separate content", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)
		payload := gifData(10, 10)

		first, err := ts.store.Ingest(ctx, payload, "attachments", "a.gif", false)
		require.NoError(t, err)
		second, err := ts.store.Ingest(ctx, payload, "assets", "b.gif", false)
		require.NoError(t, err)

		assert.True(t, second.Canonical())
		assert.NotEqual(t, first.ContentID, second.ContentID)
		assert.Equal(t, 2, storedFiles(t, ts.root))
	})

	t.Run("bucket policy rejects video outside attachments", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		_, err := ts.store.Ingest(ctx, mp4Data(), "assets", "clip.mp4", false)
		assert.ErrorIs(t, err, filestore.ErrPolicyViolation)

		assert.Equal(t, 0, ts.catalog.Len(), "no record on policy violation")
		assert.Equal(t, 0, storedFiles(t, ts.root), "no bytes on policy violation")
	})

	t.Run("bucket policy rejects text outside attachments", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		_, err := ts.store.Ingest(ctx, []byte("plain text"), "assets", "note.txt", false)
		assert.ErrorIs(t, err, filestore.ErrPolicyViolation)
	})

	t.Run("attachments accepts any type", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		record, err := ts.store.Ingest(ctx, []byte("plain text"), "attachments", "note.txt", false)
		require.NoError(t, err)
		assert.Equal(t, filestore.MetadataText, record.Metadata().Type)
	})

	t.Run("unknown bucket leaves nothing behind", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		_, err := ts.store.Ingest(ctx, gifData(5, 5), "bogus", "a.gif", false)

		var verr filestore.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "bucket", verr.Field)
		assert.Equal(t, 0, ts.catalog.Len())
		assert.Equal(t, 0, storedFiles(t, ts.root))
	})

	t.Run("empty payload is rejected", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		_, err := ts.store.Ingest(ctx, nil, "attachments", "a.gif", false)

		var verr filestore.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "file", verr.Field)
	})

	t.Run("empty name falls back to attachment", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		record, err := ts.store.Ingest(ctx, gifData(5, 5), "attachments", "", false)
		require.NoError(t, err)
		assert.Equal(t, "attachment", record.Name)
	})

	t.Run("failed promote leaves nothing behind", func(t *testing.T) {
		t.Parallel()

		gen, err := idgen.New(idgen.Config{InstanceSalt: "promote-failure"})
		require.NoError(t, err)

		root := t.TempDir()
		blobs, err := blob.NewLocal(root)
		require.NoError(t, err)

		catalog := filestore.NewMemoryCatalog()
		store, err := filestore.New(gen, catalog, failingPromoteStorage{Storage: blobs}, mediaprobe.New())
		require.NoError(t, err)

		_, err = store.Ingest(ctx, gifData(5, 5), "attachments", "a.gif", false)
		require.Error(t, err)

		assert.Equal(t, 0, catalog.Len(), "no record on failed promote")
		assert.Equal(t, 0, storedFiles(t, root), "no staged bytes on failed promote")
	})

	t.Run("custom bucket allow-list", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t, filestore.WithBuckets("avatars"))

		_, err := ts.store.Ingest(ctx, gifData(5, 5), "avatars", "a.gif", false)
		require.NoError(t, err)

		_, err = ts.store.Ingest(ctx, gifData(5, 5), "attachments", "a.gif", false)
		var verr filestore.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestStore_ConcurrentIngest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ts := newTestStore(t)
	payload := gifData(32, 32)

	const uploads = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		records []*filestore.FileRecord
	)
	for range uploads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := ts.store.Ingest(ctx, payload, "attachments", "same.gif", false)
			assert.NoError(t, err)
			if record != nil {
				mu.Lock()
				records = append(records, record)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, records, uploads)

	canonical := 0
	contentID := records[0].ContentID
	for _, record := range records {
		assert.Equal(t, contentID, record.ContentID, "all uploads share one content")
		if record.Canonical() {
			canonical++
		}
	}
	assert.Equal(t, 1, canonical, "exactly one canonical record survives")
	assert.Equal(t, 1, storedFiles(t, ts.root), "exactly one blob survives")
	assert.Equal(t, uploads, ts.catalog.Len())
}

func TestStore_LookupAndOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("lookup is bucket scoped", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		record, err := ts.store.Ingest(ctx, gifData(5, 5), "attachments", "a.gif", false)
		require.NoError(t, err)

		found, err := ts.store.Lookup(ctx, record.ID, "attachments")
		require.NoError(t, err)
		assert.Equal(t, record.ID, found.ID)

		_, err = ts.store.Lookup(ctx, record.ID, "assets")
		assert.ErrorIs(t, err, filestore.ErrNotFound)
	})

	t.Run("open streams the canonical payload for dedup records", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)
		payload := gifData(7, 9)

		_, err := ts.store.Ingest(ctx, payload, "attachments", "one.gif", false)
		require.NoError(t, err)
		dedup, err := ts.store.Ingest(ctx, payload, "attachments", "two.gif", false)
		require.NoError(t, err)
		require.False(t, dedup.Canonical())

		record, r, size, err := ts.store.Open(ctx, dedup.ID, "attachments")
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		assert.Equal(t, dedup.ID, record.ID)
		assert.Equal(t, int64(len(payload)), size)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("missing blob is an invariant violation", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		// A record without its blob can only appear if ingestion atomicity
		// was broken; simulate the corruption directly in the catalog.
		require.NoError(t, ts.catalog.Insert(ctx, &filestore.FileRecord{
			ID: 99, ContentID: 99, Name: "ghost", ContentType: "image/png",
			ContentHash: "deadbeef", Bucket: "attachments",
		}))

		_, _, _, err := ts.store.Open(ctx, 99, "attachments")
		assert.ErrorIs(t, err, filestore.ErrMissingBlob)
	})

	t.Run("open of unknown id", func(t *testing.T) {
		t.Parallel()
		ts := newTestStore(t)

		_, _, _, err := ts.store.Open(ctx, 12345, "attachments")
		assert.ErrorIs(t, err, filestore.ErrNotFound)
	})
}
