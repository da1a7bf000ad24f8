package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/repository/memory"
	"github.com/top-magar/indigo-sub018/internal/usecase"
)

type recordingCounterStore struct {
	keys      []string
	count     int
	expiresAt time.Time
	err       error
}

func (r *recordingCounterStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	r.keys = append(r.keys, key)
	if r.err != nil {
		return 0, time.Time{}, r.err
	}
	expiresAt := r.expiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(window)
	}
	return r.count, expiresAt, nil
}

func admissionConfigs(max int, window time.Duration) map[domain.RateLimitScope]domain.RateLimitConfig {
	configs := make(map[domain.RateLimitScope]domain.RateLimitConfig)
	for _, scope := range domain.Scopes() {
		configs[scope] = domain.RateLimitConfig{Window: window, MaxRequests: max}
	}
	return configs
}

func newTestAdmission(t *testing.T, store *recordingCounterStore, max int) *Admission {
	t.Helper()

	limiter := usecase.NewRateLimiter(store, admissionConfigs(max, time.Minute), zaptest.NewLogger(t))
	return NewAdmission(limiter, nil, zaptest.NewLogger(t))
}

func serveAdmission(handler gin.HandlerFunc, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/", handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4242"
	for _, m := range mutate {
		m(req)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAdmissionAllowsWithinBudget(t *testing.T) {
	reset := time.Date(2026, 8, 1, 12, 1, 0, 0, time.UTC)
	store := &recordingCounterStore{count: 2, expiresAt: reset}
	admission := newTestAdmission(t, store, 5)

	rr := serveAdmission(admission.Storefront())

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("expected limit header 5, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "3" {
		t.Fatalf("expected remaining header 3, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Reset"); got != strconv.FormatInt(reset.Unix(), 10) {
		t.Fatalf("unexpected reset header %q", got)
	}
	if got := rr.Header().Get("Retry-After"); got != "" {
		t.Fatalf("expected no retry-after header, got %q", got)
	}
}

func TestAdmissionRejectsOverBudget(t *testing.T) {
	store := &recordingCounterStore{count: 6, expiresAt: time.Now().Add(30 * time.Second)}
	admission := newTestAdmission(t, store, 5)

	rr := serveAdmission(admission.Storefront())

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got == "" {
		t.Fatal("expected retry-after header on rejection")
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected remaining header 0, got %q", got)
	}

	var body RateLimitedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != "RATE_LIMITED" {
		t.Fatalf("expected code RATE_LIMITED, got %q", body.Code)
	}
	if body.Error == "" {
		t.Fatal("expected non-empty error message")
	}
	if body.RetryAfter <= 0 {
		t.Fatalf("expected positive retryAfter, got %d", body.RetryAfter)
	}
	if body.RequestID == "" {
		t.Fatal("expected requestId in rejection body")
	}
}

func TestAdmissionEnforcesSequentially(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewCounterStore().WithClock(func() time.Time { return now })
	limiter := usecase.NewRateLimiter(store, admissionConfigs(3, time.Minute), zaptest.NewLogger(t)).
		WithClock(func() time.Time { return now })
	admission := NewAdmission(limiter, nil, zaptest.NewLogger(t))
	handler := admission.Storefront()

	for i := 1; i <= 3; i++ {
		if rr := serveAdmission(handler); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	if rr := serveAdmission(handler); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after budget exhausted, got %d", rr.Code)
	}
}

func TestAdmissionSkipPredicateBypassesCheck(t *testing.T) {
	store := &recordingCounterStore{count: 100}
	admission := newTestAdmission(t, store, 5)

	handler := admission.Limit(AdmissionOptions{
		Scope:          domain.ScopeStorefront,
		IdentifierType: IdentifyByIP,
		Skip: func(c *gin.Context) bool {
			return c.Request.URL.Path == "/"
		},
	})

	rr := serveAdmission(handler)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for skipped route, got %d", rr.Code)
	}
	if len(store.keys) != 0 {
		t.Fatalf("expected no counter increments, got %v", store.keys)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "" {
		t.Fatalf("expected no rate limit headers on skipped route, got %q", got)
	}
}

func TestAdmissionFailsOpenWithoutIdentifiers(t *testing.T) {
	store := &recordingCounterStore{count: 100}
	admission := newTestAdmission(t, store, 5)

	// Custom identification with no extractor resolves zero identifiers.
	handler := admission.Limit(AdmissionOptions{
		Scope:          domain.ScopeStorefront,
		IdentifierType: IdentifyByCustom,
	})

	rr := serveAdmission(handler)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when failing open, got %d", rr.Code)
	}
	if len(store.keys) != 0 {
		t.Fatalf("expected no counter increments, got %v", store.keys)
	}
}

func TestAdmissionFailsOpenOnStoreError(t *testing.T) {
	store := &recordingCounterStore{err: errors.New("redis down")}
	admission := newTestAdmission(t, store, 5)

	rr := serveAdmission(admission.Storefront())

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when failing open, got %d", rr.Code)
	}
}

func TestAdmissionCountsForwardedAndPeerAddress(t *testing.T) {
	store := &recordingCounterStore{count: 1}
	admission := newTestAdmission(t, store, 5)

	serveAdmission(admission.Storefront(), func(req *http.Request) {
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
	})

	if len(store.keys) != 2 {
		t.Fatalf("expected 2 counter keys, got %v", store.keys)
	}
	if store.keys[0] != "storefront:ip:203.0.113.7" {
		t.Fatalf("unexpected forwarded key %q", store.keys[0])
	}
	if store.keys[1] != "storefront:ip:192.0.2.1" {
		t.Fatalf("unexpected peer key %q", store.keys[1])
	}
}

func TestAdmissionUserIdentityPrefersUserID(t *testing.T) {
	store := &recordingCounterStore{count: 1}
	admission := newTestAdmission(t, store, 5)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/",
		func(c *gin.Context) { c.Set(UserIDKey, "user-123") },
		admission.Dashboard(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4242"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(store.keys) != 1 || store.keys[0] != "dashboard:user:user-123" {
		t.Fatalf("expected single user key, got %v", store.keys)
	}
}

func TestAdmissionUserIdentityFallsBackToIP(t *testing.T) {
	store := &recordingCounterStore{count: 1}
	admission := newTestAdmission(t, store, 5)

	rr := serveAdmission(admission.Dashboard())

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(store.keys) == 0 || store.keys[0] != "dashboard:ip:192.0.2.1" {
		t.Fatalf("expected IP fallback key, got %v", store.keys)
	}
}

func TestAdmissionCustomExtractor(t *testing.T) {
	store := &recordingCounterStore{count: 1}
	admission := newTestAdmission(t, store, 5)

	handler := admission.Limit(AdmissionOptions{
		Scope:          domain.ScopeCheckout,
		IdentifierType: IdentifyByCustom,
		Extract: func(c *gin.Context) []string {
			return []string{"apikey:" + c.GetHeader("X-Api-Key"), ""}
		},
	})

	serveAdmission(handler, func(req *http.Request) {
		req.Header.Set("X-Api-Key", "k1")
	})

	if len(store.keys) != 1 || store.keys[0] != "checkout:apikey:k1" {
		t.Fatalf("expected custom key, got %v", store.keys)
	}
}

func TestAdmissionOverrideReplacesBudget(t *testing.T) {
	store := &recordingCounterStore{count: 2, expiresAt: time.Now().Add(time.Minute)}
	admission := newTestAdmission(t, store, 100)

	handler := admission.Limit(AdmissionOptions{
		Scope:          domain.ScopeStorefront,
		IdentifierType: IdentifyByIP,
		Override:       &domain.RateLimitConfig{Window: time.Minute, MaxRequests: 1},
	})

	rr := serveAdmission(handler)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 under override budget, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "1" {
		t.Fatalf("expected limit header 1, got %q", got)
	}
}

func TestAdmissionCustomRejectionHandler(t *testing.T) {
	store := &recordingCounterStore{count: 10, expiresAt: time.Now().Add(time.Minute)}
	admission := newTestAdmission(t, store, 5)

	handler := admission.Limit(AdmissionOptions{
		Scope:          domain.ScopeStorefront,
		IdentifierType: IdentifyByIP,
		OnRateLimited: func(c *gin.Context, result domain.RateLimitResult) {
			c.String(http.StatusServiceUnavailable, "come back in %d", result.RetryAfterSeconds)
		},
	})

	rr := serveAdmission(handler)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected custom status 503, got %d", rr.Code)
	}
}
