package cache

import (
	"context"
	"time"
)

// NullCache backs --no-cache and the "none" backend. Every lookup misses,
// so the pipeline always recomputes.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get reports a miss for every key.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

// Delete succeeds whether or not the key was ever set.
func (*NullCache) Delete(context.Context, string) error {
	return nil
}

// Clear succeeds without touching storage, so "cache clear" works with the
// cache disabled.
func (*NullCache) Clear(context.Context) error {
	return nil
}

// Close releases nothing.
func (*NullCache) Close() error {
	return nil
}

var (
	_ Cache   = (*NullCache)(nil)
	_ Clearer = (*NullCache)(nil)
)
