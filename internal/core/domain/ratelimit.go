package domain

import "time"

// RateLimitScope partitions counters by operation class. Each scope carries
// its own window and budget so a storefront crawl cannot starve checkout.
type RateLimitScope string

const (
	ScopeStorefront   RateLimitScope = "storefront"
	ScopeDashboard    RateLimitScope = "dashboard"
	ScopeCheckout     RateLimitScope = "checkout"
	ScopeCart         RateLimitScope = "cart"
	ScopeVisualEditor RateLimitScope = "visualEditor"
	ScopeAuth         RateLimitScope = "auth"
)

// Scopes lists every known rate-limit scope.
func Scopes() []RateLimitScope {
	return []RateLimitScope{
		ScopeStorefront,
		ScopeDashboard,
		ScopeCheckout,
		ScopeCart,
		ScopeVisualEditor,
		ScopeAuth,
	}
}

// RateLimitConfig is the fixed-window budget applied to one (scope, identifier) key.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultRateLimits returns the per-scope budgets applied when configuration
// does not override them.
func DefaultRateLimits() map[RateLimitScope]RateLimitConfig {
	return map[RateLimitScope]RateLimitConfig{
		ScopeStorefront:   {Window: time.Minute, MaxRequests: 300},
		ScopeDashboard:    {Window: time.Minute, MaxRequests: 120},
		ScopeCheckout:     {Window: time.Minute, MaxRequests: 30},
		ScopeCart:         {Window: time.Minute, MaxRequests: 60},
		ScopeVisualEditor: {Window: time.Minute, MaxRequests: 180},
		ScopeAuth:         {Window: 15 * time.Minute, MaxRequests: 10},
	}
}

// RateLimitResult is the admission decision for one check.
type RateLimitResult struct {
	Allowed           bool
	Limit             int
	Remaining         int
	RetryAfterSeconds int
	Reset             time.Time
}
