package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/core/port"
)

// RateLimiter is the admission core: a fixed counting window per
// (scope, identifier) key evaluated against the scope's budget.
type RateLimiter struct {
	store   port.CounterStore
	configs map[domain.RateLimitScope]domain.RateLimitConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewRateLimiter builds the limiter over the provided counter store.
// Scopes missing from configs fall back to domain.DefaultRateLimits.
func NewRateLimiter(store port.CounterStore, configs map[domain.RateLimitScope]domain.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	merged := domain.DefaultRateLimits()
	for scope, cfg := range configs {
		if cfg.Window > 0 && cfg.MaxRequests > 0 {
			merged[scope] = cfg
		}
	}

	return &RateLimiter{
		store:   store,
		configs: merged,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock injects a custom clock, primarily for tests.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		l.now = now
	}
	return l
}

// ConfigFor returns the effective budget for a scope.
func (l *RateLimiter) ConfigFor(scope domain.RateLimitScope) domain.RateLimitConfig {
	if cfg, ok := l.configs[scope]; ok {
		return cfg
	}
	return domain.RateLimitConfig{Window: time.Minute, MaxRequests: 60}
}

// Check evaluates one identifier against the scope's window. The override,
// when non-nil, replaces the scope's configured budget for this call only.
func (l *RateLimiter) Check(ctx context.Context, scope domain.RateLimitScope, identifier string, override *domain.RateLimitConfig) (domain.RateLimitResult, error) {
	cfg := l.effectiveConfig(scope, override)

	key := fmt.Sprintf("%s:%s", scope, identifier)
	count, expiresAt, err := l.store.Increment(ctx, key, cfg.Window)
	if err != nil {
		return domain.RateLimitResult{}, fmt.Errorf("increment counter %q: %w", key, err)
	}

	result := domain.RateLimitResult{
		Allowed:   count <= cfg.MaxRequests,
		Limit:     cfg.MaxRequests,
		Remaining: cfg.MaxRequests - count,
		Reset:     expiresAt,
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	if !result.Allowed {
		result.RetryAfterSeconds = retryAfterSeconds(expiresAt, l.now())
	}

	return result, nil
}

// CheckMultiple evaluates every identifier independently against the same
// scope and budget. The aggregate is conjunctive: allowed only when every
// identifier is within budget, remaining is the minimum across identifiers,
// and retry-after is the maximum across the identifiers that failed. This
// closes bypass paths where spoofing a single identifier would suffice.
func (l *RateLimiter) CheckMultiple(ctx context.Context, scope domain.RateLimitScope, identifiers []string, override *domain.RateLimitConfig) (domain.RateLimitResult, error) {
	cfg := l.effectiveConfig(scope, override)

	aggregate := domain.RateLimitResult{
		Allowed:   true,
		Limit:     cfg.MaxRequests,
		Remaining: cfg.MaxRequests,
	}

	for _, identifier := range identifiers {
		result, err := l.Check(ctx, scope, identifier, &cfg)
		if err != nil {
			return domain.RateLimitResult{}, err
		}

		if result.Remaining < aggregate.Remaining {
			aggregate.Remaining = result.Remaining
		}
		if result.Reset.After(aggregate.Reset) {
			aggregate.Reset = result.Reset
		}

		if !result.Allowed {
			aggregate.Allowed = false
			if result.RetryAfterSeconds > aggregate.RetryAfterSeconds {
				aggregate.RetryAfterSeconds = result.RetryAfterSeconds
			}
		}
	}

	if aggregate.Reset.IsZero() {
		aggregate.Reset = l.now().Add(cfg.Window)
	}

	return aggregate, nil
}

func (l *RateLimiter) effectiveConfig(scope domain.RateLimitScope, override *domain.RateLimitConfig) domain.RateLimitConfig {
	if override != nil && override.Window > 0 && override.MaxRequests > 0 {
		return *override
	}
	return l.ConfigFor(scope)
}

func retryAfterSeconds(expiresAt, now time.Time) int {
	seconds := int(math.Ceil(expiresAt.Sub(now).Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
