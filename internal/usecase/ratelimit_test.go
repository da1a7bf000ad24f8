package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/repository/memory"
)

type fakeCounterStore struct {
	mu     sync.Mutex
	counts map[string]int
	expiry time.Time
	err    error
}

func (f *fakeCounterStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	if f.err != nil {
		return 0, time.Time{}, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[key]++
	return f.counts[key], f.expiry, nil
}

func testConfigs(max int, window time.Duration) map[domain.RateLimitScope]domain.RateLimitConfig {
	return map[domain.RateLimitScope]domain.RateLimitConfig{
		domain.ScopeStorefront: {Window: window, MaxRequests: max},
	}
}

func TestCheckAllowsUpToLimitThenRejects(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewCounterStore().WithClock(func() time.Time { return now })
	limiter := NewRateLimiter(store, testConfigs(5, time.Minute), zaptest.NewLogger(t)).
		WithClock(func() time.Time { return now })

	for i := 1; i <= 5; i++ {
		result, err := limiter.Check(context.Background(), domain.ScopeStorefront, "ip:192.0.2.1", nil)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("check %d rejected, want allowed", i)
		}
		if want := 5 - i; result.Remaining != want {
			t.Fatalf("check %d remaining = %d, want %d", i, result.Remaining, want)
		}
	}

	result, err := limiter.Check(context.Background(), domain.ScopeStorefront, "ip:192.0.2.1", nil)
	if err != nil {
		t.Fatalf("sixth check: %v", err)
	}
	if result.Allowed {
		t.Fatal("sixth check allowed, want rejected")
	}
	if result.Remaining != 0 {
		t.Fatalf("rejected remaining = %d, want 0", result.Remaining)
	}
	if result.RetryAfterSeconds <= 0 {
		t.Fatalf("rejected retryAfter = %d, want positive", result.RetryAfterSeconds)
	}
}

func TestCheckResetsAfterWindowElapses(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewCounterStore().WithClock(func() time.Time { return now })
	limiter := NewRateLimiter(store, testConfigs(2, time.Minute), zaptest.NewLogger(t)).
		WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		limiter.Check(context.Background(), domain.ScopeStorefront, "ip:192.0.2.1", nil)
	}

	now = now.Add(time.Minute)

	result, err := limiter.Check(context.Background(), domain.ScopeStorefront, "ip:192.0.2.1", nil)
	if err != nil {
		t.Fatalf("check after window: %v", err)
	}
	if !result.Allowed {
		t.Fatal("check after window rejected, want allowed")
	}
	if result.Remaining != 1 {
		t.Fatalf("remaining after reset = %d, want 1", result.Remaining)
	}
}

func TestCheckOverrideReplacesScopeConfig(t *testing.T) {
	store := memory.NewCounterStore()
	limiter := NewRateLimiter(store, testConfigs(100, time.Minute), zaptest.NewLogger(t))

	override := &domain.RateLimitConfig{Window: time.Minute, MaxRequests: 1}

	first, _ := limiter.Check(context.Background(), domain.ScopeStorefront, "ip:192.0.2.9", override)
	if !first.Allowed {
		t.Fatal("first overridden check rejected")
	}
	second, _ := limiter.Check(context.Background(), domain.ScopeStorefront, "ip:192.0.2.9", override)
	if second.Allowed {
		t.Fatal("second overridden check allowed, want rejected")
	}
	if second.Limit != 1 {
		t.Fatalf("limit = %d, want override 1", second.Limit)
	}
}

func TestCheckMultipleIsConjunctive(t *testing.T) {
	store := memory.NewCounterStore()
	limiter := NewRateLimiter(store, testConfigs(3, time.Minute), zaptest.NewLogger(t))

	// Exhaust one identifier's budget.
	for i := 0; i < 3; i++ {
		if _, err := limiter.Check(context.Background(), domain.ScopeStorefront, "ip:10.0.0.1", nil); err != nil {
			t.Fatalf("warmup check: %v", err)
		}
	}

	result, err := limiter.CheckMultiple(context.Background(), domain.ScopeStorefront,
		[]string{"ip:10.0.0.1", "user:alice"}, nil)
	if err != nil {
		t.Fatalf("checkMultiple: %v", err)
	}

	if result.Allowed {
		t.Fatal("aggregate allowed with one identifier over budget")
	}
	if result.Remaining != 0 {
		t.Fatalf("aggregate remaining = %d, want 0 (minimum)", result.Remaining)
	}
	if result.RetryAfterSeconds <= 0 {
		t.Fatalf("aggregate retryAfter = %d, want positive", result.RetryAfterSeconds)
	}
}

func TestCheckMultipleAllWithinBudget(t *testing.T) {
	store := memory.NewCounterStore()
	limiter := NewRateLimiter(store, testConfigs(5, time.Minute), zaptest.NewLogger(t))

	result, err := limiter.CheckMultiple(context.Background(), domain.ScopeStorefront,
		[]string{"ip:10.0.0.2", "user:bob"}, nil)
	if err != nil {
		t.Fatalf("checkMultiple: %v", err)
	}
	if !result.Allowed {
		t.Fatal("aggregate rejected with all identifiers fresh")
	}
	if result.Remaining != 4 {
		t.Fatalf("aggregate remaining = %d, want 4", result.Remaining)
	}
}

func TestCheckPropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("store down")
	limiter := NewRateLimiter(&fakeCounterStore{err: storeErr}, nil, zaptest.NewLogger(t))

	if _, err := limiter.Check(context.Background(), domain.ScopeAuth, "ip:10.0.0.3", nil); !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}

func TestConcurrentChecksAdmitExactlyLimit(t *testing.T) {
	const maxRequests = 5
	const workers = 50

	store := memory.NewCounterStore()
	limiter := NewRateLimiter(store, testConfigs(maxRequests, time.Minute), zaptest.NewLogger(t))

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := limiter.Check(context.Background(), domain.ScopeStorefront, "ip:race", nil)
			if err != nil {
				t.Errorf("check: %v", err)
				return
			}
			if result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != maxRequests {
		t.Fatalf("admitted %d of %d concurrent checks, want exactly %d", allowed, workers, maxRequests)
	}
}
