// Package cache stores generated plots and rendered artifacts.
//
// Generation is deterministic, so a plot is fully identified by its seed and
// the options that shape it. The [Keyer] turns those inputs into stable keys
// and a [Cache] backend stores the bytes:
//
//   - [NullCache]: stores nothing (the --no-cache flag)
//   - [FileCache]: zstd-compressed entries under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (the HTTP server)
//
// Keys are namespaced ("plot:", "artifact:") and hashed, so options that do
// not change the output never need to be part of the key format.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Entry lifetimes. Generation is deterministic, so entries only expire to
// bound disk and memory use.
const (
	TTLPlot     = 30 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
	TTLTree     = 7 * 24 * time.Hour
)

// NullCache stores nothing; every Get misses.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }
