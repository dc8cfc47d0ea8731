package ratelimit

import (
	"fmt"
	"time"
)

// Class identifies one of the statically configured limiter classes.
type Class string

// The three limiter classes. Uploads into the asset buckets use ClassAssets,
// uploads into the attachment bucket use ClassAttachments, and all fetch paths
// share ClassFetch regardless of bucket.
const (
	ClassAssets      Class = "assets"
	ClassAttachments Class = "attachments"
	ClassFetch       Class = "fetch_file"
)

// Limits holds the static budget of a limiter class for one window.
type Limits struct {
	// ResetAfter is the fixed window length.
	ResetAfter time.Duration `env:"RESET_AFTER" envDefault:"1m"`
	// RequestLimit is the number of requests admitted per window.
	RequestLimit int64 `env:"LIMIT" envDefault:"20"`
	// ByteLimit is the cumulative byte budget per window. Zero disables byte
	// accounting (used by the fetch class).
	ByteLimit int64 `env:"BYTE_LIMIT" envDefault:"0"`
}

// Config carries the per-class limits, immutable for the process lifetime.
type Config struct {
	Assets      Limits `envPrefix:"RATELIMIT_ASSETS_"`
	Attachments Limits `envPrefix:"RATELIMIT_ATTACHMENTS_"`
	Fetch       Limits `envPrefix:"RATELIMIT_FETCH_"`
}

// DefaultConfig returns limits suitable for a small deployment: a handful of
// asset uploads per minute, a generous attachment budget, and byte-unmetered
// fetches.
func DefaultConfig() Config {
	return Config{
		Assets:      Limits{ResetAfter: time.Minute, RequestLimit: 5, ByteLimit: 3 << 20},
		Attachments: Limits{ResetAfter: 3 * time.Minute, RequestLimit: 20, ByteLimit: 100 << 20},
		Fetch:       Limits{ResetAfter: time.Minute, RequestLimit: 50, ByteLimit: 0},
	}
}

// Validate checks that every class carries a usable window definition.
func (c Config) Validate() error {
	for _, cl := range []struct {
		class  Class
		limits Limits
	}{
		{ClassAssets, c.Assets},
		{ClassAttachments, c.Attachments},
		{ClassFetch, c.Fetch},
	} {
		if cl.limits.ResetAfter <= 0 {
			return fmt.Errorf("%w: class %q has non-positive reset window", ErrInvalidConfig, cl.class)
		}
		if cl.limits.RequestLimit <= 0 {
			return fmt.Errorf("%w: class %q has non-positive request limit", ErrInvalidConfig, cl.class)
		}
		if cl.limits.ByteLimit < 0 {
			return fmt.Errorf("%w: class %q has negative byte limit", ErrInvalidConfig, cl.class)
		}
	}
	return nil
}

// limits resolves the budget for a class.
func (c Config) limits(class Class) (Limits, error) {
	switch class {
	case ClassAssets:
		return c.Assets, nil
	case ClassAttachments:
		return c.Attachments, nil
	case ClassFetch:
		return c.Fetch, nil
	default:
		return Limits{}, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
}
