package port

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner abstracts transaction acquisition so the tenant-scoped executor
// can run against a pgxpool.Pool in production and pgxmock in tests.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}
