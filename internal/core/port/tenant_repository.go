package port

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
)

// TenantRepository resolves and persists tenant records. Lookups run outside
// tenant scope (they are what establishes it); Create runs at onboarding.
type TenantRepository interface {
	GetBySlug(ctx context.Context, slug string) (domain.Tenant, error)
	GetByCustomDomain(ctx context.Context, host string) (domain.Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, tenant domain.Tenant) error
}

// ProductRepository reads and writes catalog rows. Every statement relies on
// row-level security for tenant filtering, so implementations must only ever
// run inside a transaction opened by the tenant-scoped executor.
type ProductRepository interface {
	List(ctx context.Context, tx pgx.Tx) ([]domain.Product, error)
	Create(ctx context.Context, tx pgx.Tx, product domain.Product) error
}
