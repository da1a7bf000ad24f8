package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus describes the lifecycle state of a tenant store.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is one isolated store within the platform. The slug doubles as its
// subdomain label; CustomDomain, when set, routes an external domain to it.
type Tenant struct {
	ID           uuid.UUID
	Slug         string
	Name         string
	CustomDomain *string
	Status       TenantStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Product is a catalog row owned by exactly one tenant. Ownership is enforced
// by row-level security, not by application-side filtering.
type Product struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	Name       string
	Slug       string
	PriceCents int64
	Currency   string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TenantCreatedEvent is emitted to the message bus when onboarding completes.
type TenantCreatedEvent struct {
	TenantID  uuid.UUID
	Slug      string
	Name      string
	CreatedAt time.Time
}
