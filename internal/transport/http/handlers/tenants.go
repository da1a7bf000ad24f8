package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/usecase"
)

// TenantHandler exposes tenant resolution, onboarding, and slug validation.
type TenantHandler struct {
	tenants *usecase.TenantService
}

// NewTenantHandler wires the tenant handler.
func NewTenantHandler(tenants *usecase.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

var tenantErrorCases = []ErrorCase{
	{Err: usecase.ErrTenantNotFound, Status: http.StatusNotFound, Message: "store not found"},
	{Err: usecase.ErrInvalidHost, Status: http.StatusBadRequest, Message: "invalid host"},
	{Err: usecase.ErrInvalidName, Status: http.StatusBadRequest, Message: "invalid store name"},
}

// Resolve maps the request's Host header to a tenant.
func (h *TenantHandler) Resolve(c *gin.Context) {
	resolution, err := h.tenants.ResolveHost(c.Request.Context(), c.Request.Host)
	if err != nil {
		RespondWithMappedError(c, err, tenantErrorCases, http.StatusInternalServerError, "host resolution failed")
		return
	}

	response := gin.H{"kind": string(resolution.Classification.Kind)}
	if resolution.Tenant != nil {
		response["tenant"] = newTenantSummary(*resolution.Tenant)
	}

	c.JSON(http.StatusOK, response)
}

// Onboard creates a new tenant store from a display name.
func (h *TenantHandler) Onboard(c *gin.Context) {
	var req OnboardTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name is required"))
		return
	}

	tenant, err := h.tenants.Onboard(c.Request.Context(), req.Name)
	if err != nil {
		RespondWithMappedError(c, err, tenantErrorCases, http.StatusInternalServerError, "onboarding failed")
		return
	}

	c.JSON(http.StatusCreated, newTenantSummary(tenant))
}

// ValidateSlug checks a user-supplied slug and suggests an alternative.
// Failures are inline field errors, not HTTP errors.
func (h *TenantHandler) ValidateSlug(c *gin.Context) {
	var req ValidateSlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "slug is required"))
		return
	}

	validation := domain.ValidateSlug(req.Slug)
	response := ValidateSlugResponse{
		Valid:  validation.Valid,
		Reason: validation.Reason,
	}
	if !validation.Valid {
		response.Suggested = domain.GenerateSlug(req.Slug)
	}

	c.JSON(http.StatusOK, response)
}

// RegisterRoutes attaches tenant endpoints to the given group.
func (h *TenantHandler) RegisterRoutes(group *gin.RouterGroup, admission ...gin.HandlerFunc) {
	group.GET("/resolve", h.Resolve)
	group.POST("", append(admission, h.Onboard)...)
	group.POST("/validate-slug", h.ValidateSlug)
}
