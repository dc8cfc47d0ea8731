package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript performs the whole window read-modify-write server-side so that
// concurrent bursts against the same key cannot interleave between the read
// and the increments. Return values mirror the Verdict constants followed by
// the window snapshot. Keys carry no TTL: an expired window is replaced only
// when the key is next taken.
var takeScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local reset_after = tonumber(ARGV[2])
local request_limit = tonumber(ARGV[3])
local byte_limit = tonumber(ARGV[4])
local bytes = tonumber(ARGV[5])

local last_reset = tonumber(redis.call('HGET', key, 'last_reset'))
if not last_reset or now - last_reset >= reset_after then
	redis.call('DEL', key)
	redis.call('HSET', key, 'last_reset', now, 'request_count', 1, 'sent_bytes', bytes)
	return {1, now, 1, bytes}
end

local count = tonumber(redis.call('HGET', key, 'request_count')) or 0
local sent = tonumber(redis.call('HGET', key, 'sent_bytes')) or 0
if count >= request_limit then
	return {2, last_reset, count, sent}
end
if byte_limit > 0 and sent + bytes > byte_limit then
	return {3, last_reset, count, sent}
end
count = redis.call('HINCRBY', key, 'request_count', 1)
sent = redis.call('HINCRBY', key, 'sent_bytes', bytes)
return {1, last_reset, count, sent}
`)

// RedisStore implements Store on a shared Redis cache, making window budgets
// global across gateway instances. All decisions for a key execute as a single
// Lua script, giving the per-key atomicity the limiter requires.
type RedisStore struct {
	client redis.Scripter
}

// Compile-time check that RedisStore implements the Store interface.
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store on an established Redis client. Connection
// bootstrap lives in integration/database/redis.
func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client}
}

// Take implements Store.
func (rs *RedisStore) Take(ctx context.Context, key string, bytes int64, limits Limits, now time.Time) (State, Verdict, error) {
	res, err := takeScript.Run(ctx, rs.client, []string{key},
		now.UnixMilli(),
		limits.ResetAfter.Milliseconds(),
		limits.RequestLimit,
		limits.ByteLimit,
		bytes,
	).Int64Slice()
	if err != nil {
		return State{}, 0, fmt.Errorf("failed to run window script: %w", err)
	}
	if len(res) != 4 {
		return State{}, 0, fmt.Errorf("window script returned %d values, want 4", len(res))
	}

	state := State{
		WindowStart:  time.UnixMilli(res[1]),
		RequestCount: res[2],
		BytesSent:    res[3],
	}
	return state, Verdict(res[0]), nil
}
