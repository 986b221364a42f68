// Package cache stores computed iteration buffers so revisiting a view does
// not recompute it.
//
// # Backends
//
// All backends implement [Cache], a byte-oriented get/set store with
// per-entry TTL:
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [MemoryCache]: a size-bounded LRU, for the explorer and the server
//   - [RedisCache]: a shared cache for several server instances
//   - [NullCache]: stores nothing, for --no-cache
//
// # Keys
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes everything that determines
// a buffer: numeric kind, the exact rectangle bounds, the resolution and the
// iteration limit. Bounds are hashed as their exact decimal strings, so deep
// zooms never collide on float64 rounding.
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.BufferKey(cache.BufferKeyOpts{
//	    Numeric: "float64",
//	    Rect:    [4]string{"-2", "0.5", "-2", "2"},
//	    Width:   600, Height: 600, MaxIters: 500,
//	})
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultTTL is how long computed buffers stay cached.
const DefaultTTL = 7 * 24 * time.Hour
