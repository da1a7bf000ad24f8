package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/infra/telemetry"
	"github.com/top-magar/indigo-sub018/internal/usecase"
)

// rateLimitedCode is the machine-readable error code for 429 responses.
const rateLimitedCode = "RATE_LIMITED"

// IdentifierType selects how the admission middleware identifies the caller.
type IdentifierType string

const (
	// IdentifyByIP counts against the client IP (and the raw peer address
	// when a proxy header was used, so spoofing one alone is not enough).
	IdentifyByIP IdentifierType = "ip"
	// IdentifyByUser counts against the authenticated user, falling back to IP.
	IdentifyByUser IdentifierType = "user"
	// IdentifyByTenant counts against the tenant slug, falling back to IP.
	IdentifyByTenant IdentifierType = "tenant"
	// IdentifyByCustom delegates to a caller-supplied extractor.
	IdentifyByCustom IdentifierType = "custom"
)

// RateLimitedResponse is the JSON body returned on admission rejection.
type RateLimitedResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retryAfter"`
	RequestID  string `json:"requestId"`
}

// AdmissionOptions configures one admission-checked route group.
type AdmissionOptions struct {
	Scope          domain.RateLimitScope
	IdentifierType IdentifierType
	// Override replaces the scope's configured budget when non-nil.
	Override *domain.RateLimitConfig
	// Skip bypasses rate limiting entirely when it returns true.
	Skip func(c *gin.Context) bool
	// Extract supplies identifiers for IdentifyByCustom.
	Extract func(c *gin.Context) []string
	// OnRateLimited, when set, replaces the default 429 response.
	OnRateLimited func(c *gin.Context, result domain.RateLimitResult)
}

// Admission gates requests through the rate limiter core before they reach
// business logic.
type Admission struct {
	limiter *usecase.RateLimiter
	metrics *telemetry.AdmissionMetrics
	logger  *zap.Logger
}

// NewAdmission builds the admission middleware factory.
func NewAdmission(limiter *usecase.RateLimiter, metrics *telemetry.AdmissionMetrics, logger *zap.Logger) *Admission {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admission{limiter: limiter, metrics: metrics, logger: logger}
}

// Storefront admits public storefront page requests, counted per client IP.
func (a *Admission) Storefront() gin.HandlerFunc {
	return a.Limit(AdmissionOptions{Scope: domain.ScopeStorefront, IdentifierType: IdentifyByIP})
}

// Cart admits cart mutations, counted per client IP.
func (a *Admission) Cart() gin.HandlerFunc {
	return a.Limit(AdmissionOptions{Scope: domain.ScopeCart, IdentifierType: IdentifyByIP})
}

// Checkout admits checkout operations, counted per client IP.
func (a *Admission) Checkout() gin.HandlerFunc {
	return a.Limit(AdmissionOptions{Scope: domain.ScopeCheckout, IdentifierType: IdentifyByIP})
}

// Auth admits login and session endpoints, counted per client IP.
func (a *Admission) Auth() gin.HandlerFunc {
	return a.Limit(AdmissionOptions{Scope: domain.ScopeAuth, IdentifierType: IdentifyByIP})
}

// Dashboard admits merchant dashboard requests, counted per authenticated user.
func (a *Admission) Dashboard() gin.HandlerFunc {
	return a.Limit(AdmissionOptions{Scope: domain.ScopeDashboard, IdentifierType: IdentifyByUser})
}

// VisualEditor admits visual editor saves, counted per authenticated user.
func (a *Admission) VisualEditor() gin.HandlerFunc {
	return a.Limit(AdmissionOptions{Scope: domain.ScopeVisualEditor, IdentifierType: IdentifyByUser})
}

// Limit returns a gin middleware enforcing the configured admission check.
func (a *Admission) Limit(opts AdmissionOptions) gin.HandlerFunc {
	if opts.IdentifierType == "" {
		opts.IdentifierType = IdentifyByIP
	}

	return func(c *gin.Context) {
		if opts.Skip != nil && opts.Skip(c) {
			c.Next()
			return
		}

		identifiers := a.resolveIdentifiers(c, opts)
		if len(identifiers) == 0 {
			// Fail open: misconfigured identification must not take the
			// service down. The warning and counter make it visible.
			a.logger.Warn("admission check skipped: no identifier resolved",
				zap.String("scope", string(opts.Scope)),
				zap.String("identifier_type", string(opts.IdentifierType)),
				zap.String("path", c.Request.URL.Path),
			)
			if a.metrics != nil {
				a.metrics.Unidentified.WithLabelValues(string(opts.Scope)).Inc()
			}
			c.Next()
			return
		}

		result, err := a.limiter.CheckMultiple(c.Request.Context(), opts.Scope, identifiers, opts.Override)
		if err != nil {
			// Counter store trouble is an availability problem, not a reason
			// to reject traffic.
			a.logger.Error("admission check failed",
				zap.String("scope", string(opts.Scope)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		applyRateLimitHeaders(c, result)

		if a.metrics != nil {
			outcome := "allowed"
			if !result.Allowed {
				outcome = "rejected"
			}
			a.metrics.Decisions.WithLabelValues(string(opts.Scope), outcome).Inc()
		}

		if !result.Allowed {
			if opts.OnRateLimited != nil {
				opts.OnRateLimited(c, result)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitedResponse{
				Error:      "too many requests",
				Code:       rateLimitedCode,
				RetryAfter: result.RetryAfterSeconds,
				RequestID:  uuid.NewString(),
			})
			return
		}

		c.Next()
	}
}

func (a *Admission) resolveIdentifiers(c *gin.Context, opts AdmissionOptions) []string {
	switch opts.IdentifierType {
	case IdentifyByUser:
		if userID, ok := GetUserID(c); ok {
			return []string{"user:" + userID}
		}
		return ipIdentifiers(c)

	case IdentifyByTenant:
		if slug, ok := GetTenantSlug(c); ok {
			return []string{"tenant:" + slug}
		}
		return ipIdentifiers(c)

	case IdentifyByCustom:
		if opts.Extract == nil {
			return nil
		}
		var identifiers []string
		for _, id := range opts.Extract(c) {
			if id != "" {
				identifiers = append(identifiers, id)
			}
		}
		return identifiers

	default:
		return ipIdentifiers(c)
	}
}

// ipIdentifiers returns the forwarded client IP and, when it differs, the raw
// peer address. Both must be within budget: a spoofed forwarding header alone
// cannot buy a fresh counter.
func ipIdentifiers(c *gin.Context) []string {
	var identifiers []string

	if ip := c.ClientIP(); ip != "" {
		identifiers = append(identifiers, "ip:"+ip)
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil && host != "" {
		peer := "ip:" + host
		if len(identifiers) == 0 || identifiers[0] != peer {
			identifiers = append(identifiers, peer)
		}
	}

	return identifiers
}

func applyRateLimitHeaders(c *gin.Context, result domain.RateLimitResult) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))

	if !result.Allowed {
		headers.Set("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
	}
}
