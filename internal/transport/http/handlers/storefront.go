package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/top-magar/indigo-sub018/internal/transport/http/middleware"
	"github.com/top-magar/indigo-sub018/internal/usecase"
)

// StorefrontHandler serves tenant-facing storefront endpoints. Page rendering
// itself lives elsewhere; these endpoints cover the admission-gated surface
// the storefront calls into.
type StorefrontHandler struct {
	tenants *usecase.TenantService
}

// NewStorefrontHandler wires the storefront handler.
func NewStorefrontHandler(tenants *usecase.TenantService) *StorefrontHandler {
	return &StorefrontHandler{tenants: tenants}
}

// Store returns the store identity for the request's host.
func (h *StorefrontHandler) Store(c *gin.Context) {
	resolution, err := h.tenants.ResolveHost(c.Request.Context(), c.Request.Host)
	if err != nil {
		RespondWithMappedError(c, err, tenantErrorCases, http.StatusInternalServerError, "host resolution failed")
		return
	}

	if resolution.Tenant == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "store not found"))
		return
	}

	c.JSON(http.StatusOK, newTenantSummary(*resolution.Tenant))
}

// AddToCart acknowledges a cart mutation. Cart state is owned by the cart
// service; the endpoint carries the cart admission scope.
func (h *StorefrontHandler) AddToCart(c *gin.Context) {
	if _, ok := middleware.GetTenantSlug(c); !ok {
		if hc, found := middleware.GetHostClassification(c); !found || !hc.IsTenant() {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "store not found"))
			return
		}
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "added"})
}

// Checkout acknowledges a checkout start. Payment flows are external; the
// endpoint carries the checkout admission scope.
func (h *StorefrontHandler) Checkout(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{"status": "checkout_started"})
}
