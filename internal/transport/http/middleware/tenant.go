package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
)

const (
	// HostClassificationKey is the gin context key for the request's host classification.
	HostClassificationKey = "host_classification"
	// TenantSlugKey is the gin context key for the resolved tenant slug.
	TenantSlugKey = "tenant_slug"
)

// ResolveHost classifies the Host header before any business logic runs.
// Invalid hosts are rejected as client errors and never reach routing; a
// malformed Host must not be mistaken for the bare platform domain.
func ResolveHost(platformDomain string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		classification := domain.ClassifyHost(c.Request.Host, platformDomain)

		if classification.Kind == domain.HostKindInvalid {
			log.Warn("rejected malformed host header",
				zap.String("reason", classification.Reason),
				zap.String("trace_id", GetTraceID(c)),
			)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":    "invalid host",
				"trace_id": GetTraceID(c),
			})
			return
		}

		c.Set(HostClassificationKey, classification)
		if classification.Kind == domain.HostKindTenantSubdomain {
			c.Set(TenantSlugKey, classification.Slug)
		}

		c.Next()
	}
}

// GetHostClassification retrieves the classification stored by ResolveHost.
func GetHostClassification(c *gin.Context) (domain.HostClassification, bool) {
	if v, exists := c.Get(HostClassificationKey); exists {
		if hc, ok := v.(domain.HostClassification); ok {
			return hc, true
		}
	}
	return domain.HostClassification{}, false
}

// GetTenantSlug retrieves the tenant slug resolved from the Host header or,
// for path-based routing, from the route parameters.
func GetTenantSlug(c *gin.Context) (string, bool) {
	if v, exists := c.Get(TenantSlugKey); exists {
		if slug, ok := v.(string); ok && slug != "" {
			return slug, true
		}
	}
	if slug := c.Param("slug"); slug != "" {
		return slug, true
	}
	return "", false
}
