package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/core/ratelimit"
)

func newRedisStore(t *testing.T) (*ratelimit.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ratelimit.NewRedisStore(client), mr
}

func TestRedisStore_Take(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limits := ratelimit.Limits{
		ResetAfter:   time.Second,
		RequestLimit: 3,
		ByteLimit:    1000,
	}
	base := time.UnixMilli(1_700_000_000_000)

	t.Run("initializes absent window", func(t *testing.T) {
		t.Parallel()
		store, _ := newRedisStore(t)

		state, verdict, err := store.Take(ctx, "ratelimit:c:assets-assets", 250, limits, base)
		require.NoError(t, err)
		assert.Equal(t, ratelimit.VerdictAdmitted, verdict)
		assert.Equal(t, base.UnixMilli(), state.WindowStart.UnixMilli())
		assert.Equal(t, int64(1), state.RequestCount)
		assert.Equal(t, int64(250), state.BytesSent)
	})

	t.Run("request limit then rollover", func(t *testing.T) {
		t.Parallel()
		store, _ := newRedisStore(t)
		key := "ratelimit:c:fetch_file-attachments"

		for i := int64(1); i <= 3; i++ {
			state, verdict, err := store.Take(ctx, key, 0, limits, base)
			require.NoError(t, err)
			require.Equal(t, ratelimit.VerdictAdmitted, verdict)
			require.Equal(t, i, state.RequestCount)
		}

		state, verdict, err := store.Take(ctx, key, 0, limits, base.Add(900*time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, ratelimit.VerdictRequestsExceeded, verdict)
		assert.Equal(t, int64(3), state.RequestCount)

		state, verdict, err = store.Take(ctx, key, 0, limits, base.Add(limits.ResetAfter))
		require.NoError(t, err)
		assert.Equal(t, ratelimit.VerdictAdmitted, verdict)
		assert.Equal(t, int64(1), state.RequestCount)
		assert.Equal(t, int64(0), state.BytesSent)
	})

	t.Run("byte budget denial leaves counters intact", func(t *testing.T) {
		t.Parallel()
		store, _ := newRedisStore(t)
		key := "ratelimit:c:attachments-attachments"

		_, verdict, err := store.Take(ctx, key, 600, limits, base)
		require.NoError(t, err)
		require.Equal(t, ratelimit.VerdictAdmitted, verdict)

		state, verdict, err := store.Take(ctx, key, 600, limits, base.Add(time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, ratelimit.VerdictBytesExceeded, verdict)
		assert.Equal(t, int64(1), state.RequestCount)
		assert.Equal(t, int64(600), state.BytesSent)
	})

	t.Run("keys carry no TTL", func(t *testing.T) {
		t.Parallel()
		store, mr := newRedisStore(t)
		key := "ratelimit:c:assets-assets"

		_, _, err := store.Take(ctx, key, 1, limits, base)
		require.NoError(t, err)

		// Expiry is decided by the script against the caller clock, never by
		// the cache evicting the key.
		assert.Equal(t, time.Duration(0), mr.TTL(key))
	})

	t.Run("store unreachable surfaces error", func(t *testing.T) {
		t.Parallel()
		store, mr := newRedisStore(t)
		mr.Close()

		_, _, err := store.Take(ctx, "k", 0, limits, base)
		assert.Error(t, err)
	})
}
