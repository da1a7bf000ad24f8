package memory

import (
	"context"
	"sync"
	"time"

	"github.com/top-magar/indigo-sub018/internal/core/port"
)

type window struct {
	startedAt time.Time
	count     int
}

// CounterStore is an in-process fixed-window counter keyed by
// (scope, identifier). The read-increment-write runs under a single mutex so
// concurrent checks for one key can never under-count.
type CounterStore struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
}

// NewCounterStore builds an empty in-process counter store.
func NewCounterStore() *CounterStore {
	return &CounterStore{
		windows: make(map[string]window),
		now:     time.Now,
	}
}

// WithClock injects a custom clock, primarily for tests.
func (s *CounterStore) WithClock(now func() time.Time) *CounterStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Increment implements port.CounterStore.
func (s *CounterStore) Increment(_ context.Context, key string, windowSize time.Duration) (int, time.Time, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.startedAt) >= windowSize {
		w = window{startedAt: now}
	}
	w.count++
	s.windows[key] = w

	return w.count, w.startedAt.Add(windowSize), nil
}

// Purge drops expired windows. Callers run it periodically; counting
// correctness never depends on it.
func (s *CounterStore) Purge(windowSize time.Duration) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range s.windows {
		if now.Sub(w.startedAt) >= windowSize {
			delete(s.windows, key)
		}
	}
}

var _ port.CounterStore = (*CounterStore)(nil)
