package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Store is a thread-safe in-memory LRU cache of JSON values with optional
// time-based expiry. It implements domain.Cache.
type Store struct {
	maxEntries int
	ttl        time.Duration // zero disables expiry
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key     string
	value   json.RawMessage
	expires time.Time
	prev    *entry
	next    *entry
}

// NewStore creates a store holding at most maxEntries values for ttl each.
func NewStore(maxEntries int, ttl time.Duration, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

// Get returns a copy of the value for key, or domain.ErrCacheMiss.
func (s *Store) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	if s.expired(e) {
		s.delete(e)
		return nil, domain.ErrCacheMiss
	}
	s.moveToFront(e)
	return clone(e.value), nil
}

// Set stores a copy of value under key, evicting the least recently used
// entry when full.
func (s *Store) Set(_ context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expires time.Time
	if s.ttl > 0 {
		expires = s.clock.Now().Add(s.ttl)
	}

	if e, ok := s.entries[key]; ok {
		e.value = clone(value)
		e.expires = expires
		s.moveToFront(e)
		return nil
	}

	e := &entry{key: key, value: clone(value), expires: expires}
	s.entries[key] = e
	s.addToFront(e)

	if len(s.entries) > s.maxEntries {
		s.delete(s.tail)
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) expired(e *entry) bool {
	return !e.expires.IsZero() && !s.clock.Now().Before(e.expires)
}

func (s *Store) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *Store) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Store) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *Store) delete(e *entry) {
	if e == nil {
		return
	}
	delete(s.entries, e.key)
	s.remove(e)
}

func clone(v json.RawMessage) json.RawMessage {
	if v == nil {
		return nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out
}
