package port

import (
	"context"
	"time"
)

// CounterStore is the atomic fixed-window counter the rate limiter core
// counts against. Increment must be atomic for concurrent callers sharing a
// key: a read-then-write race would under-count and let bursts through.
type CounterStore interface {
	// Increment bumps the counter for key, starting a fresh window when none
	// exists or the previous one has elapsed. It returns the count including
	// this call and the instant the current window expires.
	Increment(ctx context.Context, key string, window time.Duration) (count int, expiresAt time.Time, err error)
}
