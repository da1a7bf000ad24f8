package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/repository"
)

// TenantRepository implements port.TenantRepository using PostgreSQL.
// Tenant rows are platform-owned and exempt from row-level security: they
// are what host resolution consults before any tenant scope exists.
type TenantRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTenantRepository wires a PostgreSQL-backed tenant repository.
func NewTenantRepository(pool *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *TenantRepository) WithTx(tx pgx.Tx) *TenantRepository {
	if tx == nil {
		return r
	}
	return &TenantRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

var tenantColumns = []string{
	"id",
	"slug",
	"name",
	"custom_domain",
	"status",
	"created_at",
	"updated_at",
}

// GetBySlug fetches the tenant owning the given subdomain label.
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	query := r.builder.Select(tenantColumns...).
		From("platform.tenants").
		Where(squirrel.Eq{"slug": slug})

	return r.getOne(ctx, query)
}

// GetByCustomDomain fetches the tenant owning an external domain.
func (r *TenantRepository) GetByCustomDomain(ctx context.Context, host string) (domain.Tenant, error) {
	query := r.builder.Select(tenantColumns...).
		From("platform.tenants").
		Where(squirrel.Eq{"custom_domain": host})

	return r.getOne(ctx, query)
}

// SlugExists reports whether a tenant already claimed the slug.
func (r *TenantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	sql, args, err := r.builder.Select("1").
		From("platform.tenants").
		Where(squirrel.Eq{"slug": slug}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build slug exists query: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query slug exists: %w", err)
	}

	return true, nil
}

// Create inserts a new tenant row.
func (r *TenantRepository) Create(ctx context.Context, tenant domain.Tenant) error {
	var customDomain any
	if tenant.CustomDomain != nil && *tenant.CustomDomain != "" {
		customDomain = *tenant.CustomDomain
	}

	sql, args, err := r.builder.Insert("platform.tenants").
		Columns(tenantColumns...).
		Values(
			tenant.ID,
			tenant.Slug,
			tenant.Name,
			customDomain,
			tenant.Status,
			tenant.CreatedAt,
			tenant.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build tenant insert: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert tenant: %w", err)
	}

	return nil
}

func (r *TenantRepository) getOne(ctx context.Context, query squirrel.SelectBuilder) (domain.Tenant, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("build tenant query: %w", err)
	}

	var (
		tenant       domain.Tenant
		customDomain *string
	)

	row := r.exec.QueryRow(ctx, sql, args...)
	if err := row.Scan(
		&tenant.ID,
		&tenant.Slug,
		&tenant.Name,
		&customDomain,
		&tenant.Status,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tenant{}, repository.ErrNotFound
		}
		return domain.Tenant{}, fmt.Errorf("scan tenant: %w", err)
	}

	tenant.CustomDomain = customDomain
	return tenant, nil
}
