// Package tx carries the active unit of work on a context so stores can join it.
//
// Postgres stores look for a *sql.Tx (WithTx/From). In-memory stores look for
// an undo journal (WithJournal/RecordUndo) and register a compensating action
// for every write, which the in-memory transaction replays in reverse when the
// unit fails.
package tx

import (
	"context"
	"database/sql"
	"sync"
)

type ctxKey struct{}

type journalKey struct{}

var (
	txKey      = ctxKey{}
	journalCtx = journalKey{}
)

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Journal records compensating actions for in-memory writes.
type Journal struct {
	mu    sync.Mutex
	undos []func()
}

// WithJournal attaches a fresh journal to ctx.
func WithJournal(ctx context.Context) (context.Context, *Journal) {
	j := &Journal{}
	return context.WithValue(ctx, journalCtx, j), j
}

// RecordUndo registers undo on the journal in ctx. Outside a unit of work it
// is a no-op.
func RecordUndo(ctx context.Context, undo func()) {
	j, ok := ctx.Value(journalCtx).(*Journal)
	if !ok || undo == nil {
		return
	}
	j.mu.Lock()
	j.undos = append(j.undos, undo)
	j.mu.Unlock()
}

// Rollback replays recorded undos newest first and clears the journal.
func (j *Journal) Rollback() {
	j.mu.Lock()
	undos := j.undos
	j.undos = nil
	j.mu.Unlock()
	for i := len(undos) - 1; i >= 0; i-- {
		undos[i]()
	}
}

// Len reports how many undos are pending.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.undos)
}
