package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// TenantSummary is the API view of a tenant store.
type TenantSummary struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	CustomDomain *string `json:"custom_domain,omitempty"`
	Status       string  `json:"status"`
}

func newTenantSummary(t domain.Tenant) TenantSummary {
	return TenantSummary{
		ID:           t.ID.String(),
		Slug:         t.Slug,
		Name:         t.Name,
		CustomDomain: t.CustomDomain,
		Status:       string(t.Status),
	}
}

// OnboardTenantRequest is the payload for tenant onboarding.
type OnboardTenantRequest struct {
	Name string `json:"name" binding:"required"`
}

// ValidateSlugRequest backs interactive slug validation in onboarding forms.
type ValidateSlugRequest struct {
	Slug string `json:"slug" binding:"required"`
}

// ValidateSlugResponse carries the validation verdict and a suggested
// alternative derived from the same input.
type ValidateSlugResponse struct {
	Valid     bool   `json:"valid"`
	Reason    string `json:"reason,omitempty"`
	Suggested string `json:"suggested,omitempty"`
}

// ProductView is the API view of a catalog row.
type ProductView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	Active     bool   `json:"active"`
}

func newProductView(p domain.Product) ProductView {
	return ProductView{
		ID:         p.ID.String(),
		Name:       p.Name,
		Slug:       p.Slug,
		PriceCents: p.PriceCents,
		Currency:   p.Currency,
		Active:     p.Active,
	}
}

// CreateProductRequest is the payload for catalog creation.
type CreateProductRequest struct {
	Name       string `json:"name" binding:"required"`
	PriceCents int64  `json:"price_cents" binding:"required"`
	Currency   string `json:"currency"`
}

// SessionRequest is the payload for issuing a dashboard session token.
type SessionRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	TenantID string `json:"tenant_id" binding:"required"`
}

// SessionResponse carries the issued session token.
type SessionResponse struct {
	Token string `json:"token"`
}
