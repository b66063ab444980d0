package shield

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a size-bounded, expiring key/value container. Capacity pressure
// evicts the least-recently-accessed entry ("accessed" covers both reads and
// writes); expiry is checked lazily on read, so an expired entry reads as
// absent even before it is physically removed. All operations are safe for
// concurrent use.
type Store[V any] struct {
	mu  sync.Mutex
	lru *lru.Cache[string, *entry[V]]
	ttl time.Duration
}

// NewStore creates a store holding at most maxEntries live entries whose
// values expire ttl after their last write.
func NewStore[V any](maxEntries int, ttl time.Duration) *Store[V] {
	cache, err := lru.New[string, *entry[V]](maxEntries)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &Store[V]{lru: cache, ttl: ttl}
}

// Get returns the live value for key. Expired entries are removed and
// reported as absent.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lru.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		s.lru.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Peek returns the live value for key without refreshing its recency.
func (s *Store[V]) Peek(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lru.Peek(key)
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set writes the value for key and resets its TTL to the store default.
func (s *Store[V]) Set(key string, value V) {
	s.SetTTL(key, value, s.ttl)
}

// SetTTL writes the value for key with an explicit TTL. A non-positive ttl
// falls back to the store default.
func (s *Store[V]) SetTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Add(key, &entry[V]{value: value, expiresAt: time.Now().Add(ttl)})
}

// Replace updates the value for an existing live key while preserving its
// current expiry, so fixed windows are not silently extended by writes.
// Returns false if the key is absent or expired.
func (s *Store[V]) Replace(key string, value V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lru.Get(key)
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		s.lru.Remove(key)
		return false
	}
	e.value = value
	return true
}

// ExpiresAt reports when the entry for key lapses, without touching recency.
func (s *Store[V]) ExpiresAt(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lru.Peek(key)
	if !ok || time.Now().After(e.expiresAt) {
		return time.Time{}, false
	}
	return e.expiresAt, true
}

// Delete removes the entry for key, if any.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Remove(key)
}

// Len returns the number of entries currently held, including entries that
// have expired but not yet been swept.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lru.Len()
}

// PurgeExpired physically removes expired entries and returns how many were
// dropped. Called from the periodic maintenance sweep; correctness does not
// depend on it since reads treat expired entries as absent.
func (s *Store[V]) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for _, key := range s.lru.Keys() {
		if e, ok := s.lru.Peek(key); ok && now.After(e.expiresAt) {
			s.lru.Remove(key)
			removed++
		}
	}
	return removed
}
