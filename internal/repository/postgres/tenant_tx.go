package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/core/port"
)

// ErrUnauthorized is returned when no valid session backs the action. It is
// raised before any transaction is opened, so a rejected call has zero
// database side effects.
var ErrUnauthorized = errors.New("unauthorized: no tenant session")

// tenantGUC is the transaction-local configuration variable the row-level
// security policies read. set_config(..., true) scopes it to the current
// transaction, so it resets at COMMIT/ROLLBACK and is invisible to any other
// connection.
const tenantGUC = "app.current_tenant"

const defaultAcquireTimeout = 5 * time.Second

// ActionFunc is a unit of tenant business logic executed inside a scoped
// transaction. Every statement it issues through tx sees only the tenant's rows.
type ActionFunc func(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error

// TenantTxExecutor is the single chokepoint allowed to open transactions over
// tenant data. It authenticates the context, opens one transaction, pins the
// tenant variable as the first statement, and commits or rolls back around
// the callback.
type TenantTxExecutor struct {
	db             port.TxBeginner
	logger         *zap.Logger
	acquireTimeout time.Duration
}

// NewTenantTxExecutor builds an executor over the given transaction source
// (a *pgxpool.Pool in production).
func NewTenantTxExecutor(db port.TxBeginner, logger *zap.Logger) *TenantTxExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantTxExecutor{
		db:             db,
		logger:         logger,
		acquireTimeout: defaultAcquireTimeout,
	}
}

// WithAcquireTimeout bounds how long transaction acquisition may block on an
// exhausted connection pool before surfacing a retryable error.
func (e *TenantTxExecutor) WithAcquireTimeout(timeout time.Duration) *TenantTxExecutor {
	if timeout > 0 {
		e.acquireTimeout = timeout
	}
	return e
}

// AuthorizedAction runs fn inside a transaction scoped to the tenant of the
// session carried by ctx.
//
// The tenant variable is set as the transaction's first statement; the
// callback only runs after it succeeds. Any error before commit rolls the
// whole transaction back and propagates unchanged. Cancellation of ctx
// before commit also rolls back.
func (e *TenantTxExecutor) AuthorizedAction(ctx context.Context, fn ActionFunc) error {
	session, ok := domain.SessionFromContext(ctx)
	if !ok || !session.Valid() {
		return ErrUnauthorized
	}

	acquireCtx, cancel := context.WithTimeout(ctx, e.acquireTimeout)
	tx, err := e.db.BeginTx(acquireCtx, pgx.TxOptions{})
	cancel()
	if err != nil {
		return fmt.Errorf("begin tenant transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			e.logger.Error("tenant transaction rollback failed",
				zap.String("tenant_id", session.TenantID.String()),
				zap.Error(rbErr),
			)
		}
	}()

	if _, err := tx.Exec(ctx, "SELECT set_config($1, $2, true)", tenantGUC, session.TenantID.String()); err != nil {
		return fmt.Errorf("set tenant scope: %w", err)
	}

	if err := fn(ctx, tx, session.TenantID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tenant transaction: %w", err)
	}
	committed = true

	return nil
}
