package postgres

import (
	"context"
	"database/sql"
	"time"

	dErrors "auditlink/pkg/domain-errors"
	txcontext "auditlink/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// LedgerLockKey is the advisory lock taken by every ledger unit of work.
const LedgerLockKey int64 = 0x61756469746c6e6b

// TxRunner runs units of work in a database transaction that holds a
// transaction-scoped advisory lock, so ledger mutations are serialized
// across processes. Stores join the transaction through pkg/platform/tx.
type TxRunner struct {
	db      *sql.DB
	lockKey int64
	timeout time.Duration
}

type TxOption func(*TxRunner)

func WithTxTimeout(d time.Duration) TxOption {
	return func(t *TxRunner) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func NewTxRunner(db *sql.DB, lockKey int64, opts ...TxOption) *TxRunner {
	t := &TxRunner{db: db, lockKey: lockKey, timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TxRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	// Once admitted the unit runs to completion; only the deadline bounds it.
	ctx = context.WithoutCancel(ctx)
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, t.lockKey); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire ledger lock")
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}

// View runs fn outside a transaction. Each committed unit is atomic in
// Postgres, so reads cannot observe a partial transition.
func (t *TxRunner) View(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
