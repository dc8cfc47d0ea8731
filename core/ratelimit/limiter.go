package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/filevault/core/logger"
)

// Limiter gates requests against per-(class, bucket, client) windows kept in a
// Store. It is stateless apart from the store handle and safe for concurrent
// use.
type Limiter struct {
	store Store
	cfg   Config
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger for denial and rollover events.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// WithClock overrides the time source. Used by tests to drive window rollover
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a Limiter backed by the given store.
func New(store Store, cfg Config, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Limiter{
		store: store,
		cfg:   cfg,
		log:   slog.New(slog.DiscardHandler),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check applies one request of the given byte size against the window for
// (class, bucket, clientKey). The returned Result is non-nil whenever the
// error is nil; denial is reported through Result.Err, not through the error
// return. A non-nil error means the store could not be reached and the request
// must fail rather than bypass the limiter.
func (l *Limiter) Check(ctx context.Context, class Class, bucket, clientKey string, bytes int64) (*Result, error) {
	limits, err := l.cfg.limits(class)
	if err != nil {
		return nil, err
	}
	if bytes < 0 {
		return nil, fmt.Errorf("%w: negative byte size", ErrInvalidConfig)
	}

	now := l.now()

	// A request larger than the whole budget can never be admitted by any
	// window state, so it is rejected without a cache round trip.
	if limits.ByteLimit > 0 && bytes > limits.ByteLimit {
		return &Result{
			Limits: limits,
			reason: ErrFileTooLarge,
			nowMS:  now.UnixMilli(),
		}, nil
	}

	key := windowKey(class, bucket, clientKey)

	state, verdict, err := l.store.Take(ctx, key, bytes, limits, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	result := &Result{
		Limits: limits,
		State:  state,
		nowMS:  now.UnixMilli(),
	}

	switch verdict {
	case VerdictAdmitted:
	case VerdictRequestsExceeded:
		result.reason = ErrRateLimited
		l.log.InfoContext(ctx, "request denied by window limit",
			logger.Component("ratelimit"),
			logger.RatelimitKey(key),
			slog.Int64("request_count", state.RequestCount),
		)
	case VerdictBytesExceeded:
		result.reason = ErrBytesRateLimited
		l.log.InfoContext(ctx, "request denied by byte budget",
			logger.Component("ratelimit"),
			logger.RatelimitKey(key),
			logger.BytesIn(bytes),
			slog.Int64("bytes_sent", state.BytesSent),
		)
	default:
		return nil, fmt.Errorf("%w: unexpected verdict %d", ErrStoreUnavailable, verdict)
	}

	return result, nil
}

// windowKey builds the composite cache key for one window.
func windowKey(class Class, bucket, clientKey string) string {
	return fmt.Sprintf("ratelimit:%s:%s-%s", clientKey, class, bucket)
}
