package memory

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value   T
	evictAt time.Time
}

// Store is a process-local key-value store with per-entry TTL.
// Expired entries are invisible to Get and removed by Sweep.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	now     func() time.Time
}

// NewStore creates an empty store. now defaults to time.Now.
func NewStore[T any](now func() time.Time) *Store[T] {
	if now == nil {
		now = time.Now
	}
	return &Store[T]{entries: make(map[string]entry[T]), now: now}
}

func (s *Store[T]) Get(_ context.Context, key string) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || s.now().After(e.evictAt) {
		var zero T
		return zero, false, nil
	}
	return e.value, true, nil
}

func (s *Store[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[T]{value: value, evictAt: s.now().Add(ttl)}
	return nil
}

func (s *Store[T]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Snapshot copies every live entry.
func (s *Store[T]) Snapshot(_ context.Context) (map[string]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make(map[string]T, len(s.entries))
	for k, e := range s.entries {
		if !now.After(e.evictAt) {
			out[k] = e.value
		}
	}
	return out, nil
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, e := range s.entries {
		if now.After(e.evictAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of entries, expired or not.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *Store[T]) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
