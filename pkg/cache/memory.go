package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultMemoryBytes bounds a MemoryCache when no limit is given: about
// 70 buffers of 600x600.
const DefaultMemoryBytes = 200 << 20

// MemoryCache is an in-process LRU bounded by total entry size.
//
// Recency order comes from simplelru; the byte bound and per-entry expiry
// are kept here, since simplelru bounds by entry count only.
type MemoryCache struct {
	mu       sync.Mutex
	maxBytes int
	size     int
	lru      *simplelru.LRU[string, memoryEntry]
	now      func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryCache returns an LRU cache holding at most maxBytes of data.
// Values below 1 select DefaultMemoryBytes.
func NewMemoryCache(maxBytes int) *MemoryCache {
	if maxBytes < 1 {
		maxBytes = DefaultMemoryBytes
	}
	c := &MemoryCache{maxBytes: maxBytes, now: time.Now}
	// The count limit never binds; evictions are driven by size in Set.
	lru, err := simplelru.NewLRU[string, memoryEntry](math.MaxInt32, func(_ string, e memoryEntry) {
		c.size -= len(e.data)
	})
	if err != nil {
		panic(err) // only for a non-positive size
	}
	c.lru = lru
	return c
}

// Get returns a copy of the entry and marks it recently used.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Set stores a copy of data, evicting least recently used entries to stay
// within the size bound. Entries larger than the bound are not stored.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if len(data) > c.maxBytes {
		return nil
	}
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// simplelru updates in place without the evict callback, so drop the
	// old value first to keep size exact.
	c.lru.Remove(key)
	c.lru.Add(key, e)
	c.size += len(e.data)
	for c.size > c.maxBytes {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			break
		}
	}
	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.size = 0
	return nil
}

// Len returns the number of entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	return c.Clear(context.Background())
}

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
