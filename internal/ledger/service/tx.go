package service

import (
	"context"
	"sync"
	"time"

	dErrors "auditlink/pkg/domain-errors"
	txcontext "auditlink/pkg/platform/tx"
)

// StoreTx provides the unit-of-work boundary for ledger operations.
// RunInTx serializes mutations and commits or discards all their writes
// together. View runs reads so they never observe a half-applied unit.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
	View(ctx context.Context, fn func(ctx context.Context) error) error
}

// defaultTxTimeout is the maximum duration for a ledger transaction.
const defaultTxTimeout = 5 * time.Second

// inMemoryStoreTx is a single global lock. Writes made by in-memory stores
// register undos on the journal carried in txCtx; they are replayed when fn
// fails or panics.
type inMemoryStoreTx struct {
	mu      sync.RWMutex
	timeout time.Duration
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{timeout: defaultTxTimeout}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	// Once admitted the unit runs to completion; only the deadline bounds it.
	ctx = context.WithoutCancel(ctx)
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	t.mu.Lock()
	defer t.mu.Unlock()

	txCtx, journal := txcontext.WithJournal(ctx)
	committed := false
	defer func() {
		if !committed {
			journal.Rollback()
		}
	}()

	if err := fn(txCtx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (t *inMemoryStoreTx) View(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fn(ctx)
}
