package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
)

// ProductRepository implements port.ProductRepository using PostgreSQL.
//
// Note the absence of any tenant_id predicate: visibility is enforced by the
// row-level security policy reading app.current_tenant, which only the
// tenant-scoped transaction executor sets. Every method therefore takes the
// executor's transaction rather than the pool.
type ProductRepository struct {
	builder squirrel.StatementBuilderType
}

// NewProductRepository wires a PostgreSQL-backed product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var productColumns = []string{
	"id",
	"tenant_id",
	"name",
	"slug",
	"price_cents",
	"currency",
	"active",
	"created_at",
	"updated_at",
}

// List returns the catalog rows visible inside the current transaction.
func (r *ProductRepository) List(ctx context.Context, tx pgx.Tx) ([]domain.Product, error) {
	sql, args, err := r.builder.Select(productColumns...).
		From("platform.products").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product list query: %w", err)
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.TenantID,
			&p.Name,
			&p.Slug,
			&p.PriceCents,
			&p.Currency,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Create inserts a catalog row. The RLS write policy rejects rows whose
// tenant_id differs from the transaction's app.current_tenant.
func (r *ProductRepository) Create(ctx context.Context, tx pgx.Tx, product domain.Product) error {
	sql, args, err := r.builder.Insert("platform.products").
		Columns(productColumns...).
		Values(
			product.ID,
			product.TenantID,
			product.Name,
			product.Slug,
			product.PriceCents,
			product.Currency,
			product.Active,
			product.CreatedAt,
			product.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build product insert: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}
