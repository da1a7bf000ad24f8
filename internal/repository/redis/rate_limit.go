package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/top-magar/indigo-sub018/internal/core/port"
)

// CounterConfig configures key namespacing for the fixed-window counter.
type CounterConfig struct {
	KeyPrefix string
}

// CounterStore persists fixed-window admission counters in Redis so limits
// hold across processes. INCR is atomic on the server, which gives the
// race-freedom the admission layer requires without client-side locking.
type CounterStore struct {
	client *redis.Client
	cfg    CounterConfig
}

// NewCounterStore constructs a store using the provided Redis client.
func NewCounterStore(client *redis.Client, cfg CounterConfig) *CounterStore {
	return &CounterStore{client: client, cfg: cfg}
}

// Increment implements port.CounterStore. The window is anchored at the first
// increment: the key's TTL is set once and every later increment inherits it,
// so the counter resets exactly when the window elapses.
func (s *CounterStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	if window <= 0 {
		return 0, time.Time{}, fmt.Errorf("window must be positive")
	}

	storageKey := s.key(key)

	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, storageKey)
		pttl = pipe.PTTL(ctx, storageKey)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis incr %q: %w", storageKey, err)
	}

	count := int(incr.Val())
	ttl := pttl.Val()

	// A key without an expiry is either brand new or orphaned by a failed
	// PEXPIRE; both cases start a fresh window now.
	if ttl < 0 {
		ttl = window
		if err := s.client.PExpire(ctx, storageKey, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("redis pexpire %q: %w", storageKey, err)
		}
	}

	return count, time.Now().Add(ttl), nil
}

func (s *CounterStore) key(key string) string {
	if s.cfg.KeyPrefix == "" {
		return fmt.Sprintf("ratelimit:%s", key)
	}
	return fmt.Sprintf("%s:ratelimit:%s", s.cfg.KeyPrefix, key)
}

var _ port.CounterStore = (*CounterStore)(nil)
