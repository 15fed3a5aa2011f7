// Package memstore is an in-process store.StateStore with real TTL
// semantics. It backs unit tests and single-instance deployments that
// have no Redis.
package memstore

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type entry struct {
	value     string
	set       map[string]struct{}
	expiresAt time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store keeps all keys in one map. Expiry is lazy: expired entries
// read as absent and are dropped on access.
type Store struct {
	mu   sync.Mutex
	data map[string]*entry

	// now is replaceable so tests can drive TTL lapse.
	now func() time.Time
}

func New() *Store {
	return &Store{
		data: make(map[string]*entry),
		now:  time.Now,
	}
}

// NewWithClock lets tests substitute the time source.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// live returns the entry at key, dropping it first if expired.
// Callers must hold mu.
func (s *Store) live(key string) (*entry, bool) {
	e, ok := s.data[key]
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		delete(s.data, key)
		return nil, false
	}
	return e, true
}

func (s *Store) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = e
	return nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *Store) GetMany(_ context.Context, keys []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if e, ok := s.live(key); ok {
			out[key] = e.value
		}
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *Store) AddToSet(_ context.Context, key, member string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok || e.set == nil {
		e = &entry{set: make(map[string]struct{})}
		s.data[key] = e
	}
	e.set[member] = struct{}{}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	return nil
}

func (s *Store) RemoveFromSet(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.live(key); ok && e.set != nil {
		delete(e.set, member)
		if len(e.set) == 0 {
			delete(s.data, key)
		}
	}
	return nil
}

func (s *Store) Members(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok || e.set == nil {
		return nil, nil
	}
	members := make([]string, 0, len(e.set))
	for m := range e.set {
		members = append(members, m)
	}
	return members, nil
}

func (s *Store) Cardinality(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok || e.set == nil {
		return 0, nil
	}
	return int64(len(e.set)), nil
}

func (s *Store) Cardinalities(ctx context.Context, keys []string) ([]int64, error) {
	counts := make([]int64, len(keys))
	for i, key := range keys {
		n, err := s.Cardinality(ctx, key)
		if err != nil {
			return nil, err
		}
		counts[i] = n
	}
	return counts, nil
}

func (s *Store) Increment(_ context.Context, key string) (int64, error) {
	return s.addDelta(key, 1)
}

func (s *Store) Decrement(_ context.Context, key string) (int64, error) {
	return s.addDelta(key, -1)
}

func (s *Store) addDelta(key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var current int64
	if e, ok := s.live(key); ok {
		current, _ = strconv.ParseInt(e.value, 10, 64)
	}
	current += delta
	if current < 0 {
		current = 0
	}
	s.data[key] = &entry{value: strconv.FormatInt(current, 10)}
	return current, nil
}
