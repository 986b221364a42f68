package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
)

// DefaultTTL is how long an unused session is kept by a Store.
const DefaultTTL = 30 * time.Minute

// Entry is a stored session with its bookkeeping.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
	Explorer  Explorer  `json:"-"`
}

// IsExpired reports whether the entry has been idle longer than ttl.
func (e *Entry) IsExpired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(e.LastUsed) > ttl
}

// Store keeps explorers by ID for multi-session front-ends such as the
// HTTP server. Sessions expire after TTL without use.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

// NewStore creates an empty store. A ttl of 0 means DefaultTTL; a negative
// ttl disables expiry.
func NewStore(ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Store{ttl: ttl, now: time.Now, entries: make(map[string]*Entry)}
}

// Add stores ex under a fresh random ID.
func (s *Store) Add(ex Explorer) *Entry {
	now := s.now()
	e := &Entry{ID: uuid.NewString(), CreatedAt: now, LastUsed: now, Explorer: ex}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	return e
}

// Touch marks a session as used without returning it. Long-lived
// connections call it per message so the session does not idle out.
func (s *Store) Touch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	now := s.now()
	if !ok || e.IsExpired(now, s.ttl) {
		delete(s.entries, id)
		return errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}
	e.LastUsed = now
	return nil
}

// Get returns the explorer stored under id and marks it used.
// Unknown and expired IDs yield SESSION_NOT_FOUND.
func (s *Store) Get(id string) (Explorer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	now := s.now()
	if !ok || e.IsExpired(now, s.ttl) {
		delete(s.entries, id)
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}
	e.LastUsed = now
	return e.Explorer, nil
}

// Delete removes a session. Unknown IDs yield SESSION_NOT_FOUND.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}
	delete(s.entries, id)
	return nil
}

// List returns copies of all live entries ordered by creation time.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.IsExpired(now, s.ttl) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup removes expired sessions and returns how many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.entries {
		if e.IsExpired(now, s.ttl) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration, onRemoved func(n int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Cleanup(); n > 0 && onRemoved != nil {
				onRemoved(n)
			}
		}
	}
}
