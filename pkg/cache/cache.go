// Package cache provides an in-memory get-or-generate store with
// exactly-once generation per key. It backs the world grid and the
// item/NPC catalogs, where a generator call is an expensive external
// request that must not run twice for the same key.
package cache

import (
	"context"
	"sync"
)

// Kind prefixes keep keys from different content kinds disjoint.
const (
	KeyLocation = "location:"
	KeyItem     = "item:"
	KeyNPC      = "npc:"
)

// Store caches values by string key. The first caller for a key runs the
// generator while holding a per-key lock; concurrent callers for the same
// key block until the result is stored, then read it. Generator results
// are stored unconditionally, fallback values included, so a key is only
// ever generated once per process.
type Store[V any] struct {
	mu      sync.Mutex
	entries map[string]V
	locks   map[string]*sync.Mutex
}

func NewStore[V any]() *Store[V] {
	return &Store[V]{
		entries: make(map[string]V),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Get returns the cached value for key, if present.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

// GetOrGenerate returns the cached value for key, generating it with fn
// if absent. fn runs at most once per key per process lifetime. The
// global mutex is held only while reading the map or inserting the
// per-key lock, never across fn.
func (s *Store[V]) GetOrGenerate(ctx context.Context, key string, fn func(ctx context.Context) V) V {
	s.mu.Lock()
	if v, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return v
	}
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// The winner of the lock race may have stored the value already.
	s.mu.Lock()
	if v, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return v
	}
	s.mu.Unlock()

	v := fn(ctx)

	s.mu.Lock()
	s.entries[key] = v
	delete(s.locks, key)
	s.mu.Unlock()
	return v
}

// Len reports the number of cached entries.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Keys returns a snapshot of the cached keys in unspecified order.
func (s *Store[V]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}
