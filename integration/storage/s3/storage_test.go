package s3_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/core/blob"
	"github.com/dmitrymomot/filevault/integration/storage/s3"
)

// mockClient is an in-memory S3 for contract tests.
type mockClient struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMockClient() *mockClient {
	return &mockClient{objects: make(map[string][]byte)}
}

func (m *mockClient) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

func (m *mockClient) PutObject(_ context.Context, params *s3aws.PutObjectInput, _ ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*params.Key] = data
	return &s3aws.PutObjectOutput{}, nil
}

func (m *mockClient) GetObject(_ context.Context, params *s3aws.GetObjectInput, _ ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3aws.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (m *mockClient) HeadObject(_ context.Context, params *s3aws.HeadObjectInput, _ ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*params.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3aws.HeadObjectOutput{}, nil
}

func (m *mockClient) CopyObject(_ context.Context, params *s3aws.CopyObjectInput, _ ...func(*s3aws.Options)) (*s3aws.CopyObjectOutput, error) {
	// CopySource is "<s3 bucket>/<key>"; strip the bucket segment.
	src := *params.CopySource
	for i := range len(src) {
		if src[i] == '/' {
			src = src[i+1:]
			break
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[src]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	m.objects[*params.Key] = data
	return &s3aws.CopyObjectOutput{}, nil
}

func (m *mockClient) DeleteObject(_ context.Context, params *s3aws.DeleteObjectInput, _ ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *params.Key)
	return &s3aws.DeleteObjectOutput{}, nil
}

func newStorage(t *testing.T) (*s3.Storage, *mockClient) {
	t.Helper()
	client := newMockClient()
	storage, err := s3.New(context.Background(), s3.Config{
		Bucket: "filevault",
		Region: "us-east-1",
	}, s3.WithClient(client))
	require.NoError(t, err)
	return storage, client
}

func TestStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stage then promote then open", func(t *testing.T) {
		t.Parallel()
		storage, client := newStorage(t)
		payload := []byte("object bytes")

		n, err := storage.Stage(ctx, "attachments", 42, bytes.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), n)
		assert.Equal(t, []string{"attachments/staging/42"}, client.keys())

		// Staged blobs are not readable.
		_, _, err = storage.Open(ctx, "attachments", 42)
		assert.ErrorIs(t, err, blob.ErrBlobNotFound)

		require.NoError(t, storage.Promote(ctx, "attachments", 42))
		assert.Equal(t, []string{"attachments/42"}, client.keys())

		r, size, err := storage.Open(ctx, "attachments", 42)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		assert.Equal(t, int64(len(payload)), size)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("promote without stage", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		assert.ErrorIs(t, storage.Promote(ctx, "attachments", 7), blob.ErrBlobNotFound)
	})

	t.Run("discard is idempotent", func(t *testing.T) {
		t.Parallel()
		storage, client := newStorage(t)

		_, err := storage.Stage(ctx, "attachments", 7, bytes.NewReader([]byte("x")))
		require.NoError(t, err)

		require.NoError(t, storage.Discard(ctx, "attachments", 7))
		require.NoError(t, storage.Discard(ctx, "attachments", 7))
		assert.Empty(t, client.keys())
	})

	t.Run("delete missing blob", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)
		assert.ErrorIs(t, storage.Delete(ctx, "attachments", 1), blob.ErrBlobNotFound)
	})

	t.Run("delete promoted blob", func(t *testing.T) {
		t.Parallel()
		storage, client := newStorage(t)

		_, err := storage.Stage(ctx, "assets", 1, bytes.NewReader([]byte("x")))
		require.NoError(t, err)
		require.NoError(t, storage.Promote(ctx, "assets", 1))

		require.NoError(t, storage.Delete(ctx, "assets", 1))
		assert.Empty(t, client.keys())
	})

	t.Run("rejects hostile bucket names", func(t *testing.T) {
		t.Parallel()
		storage, _ := newStorage(t)

		for _, bucket := range []string{"", "..", "a/b", ".staging"} {
			_, err := storage.Stage(ctx, bucket, 1, bytes.NewReader(nil))
			assert.ErrorIs(t, err, blob.ErrInvalidBucket, "bucket %q", bucket)
		}
	})
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := s3.New(context.Background(), s3.Config{}, s3.WithClient(newMockClient()))
	assert.ErrorIs(t, err, blob.ErrInvalidConfig)
}
