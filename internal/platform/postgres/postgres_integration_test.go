//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditlink/internal/platform/postgres"
	dErrors "auditlink/pkg/domain-errors"
	txcontext "auditlink/pkg/platform/tx"
	"auditlink/pkg/testutil/containers"
)

func TestMigratorUpIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pg := containers.GetManager().GetPostgres(t)
	m := postgres.NewMigrator(pg.DB)

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied, "container setup already migrated")

	status, err := m.Status(ctx)
	require.NoError(t, err)
	for _, st := range status {
		assert.True(t, st.Applied, "migration %s", st.Name)
		assert.NotNil(t, st.AppliedAt)
	}
}

func TestTxRunner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pg := containers.GetManager().GetPostgres(t)
	_, err := pg.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tx_runner_probe (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	require.NoError(t, pg.TruncateTables(ctx, "tx_runner_probe"))
	runner := postgres.NewTxRunner(pg.DB, postgres.LedgerLockKey)

	insert := func(txCtx context.Context, key string) error {
		tx, ok := txcontext.From(txCtx)
		require.True(t, ok, "transaction is carried on the context")
		_, err := tx.ExecContext(txCtx, `INSERT INTO tx_runner_probe (id) VALUES ($1)`, key)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, pg.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tx_runner_probe`).Scan(&n))
		return n
	}

	t.Run("commits", func(t *testing.T) {
		require.NoError(t, runner.RunInTx(ctx, func(txCtx context.Context) error {
			return insert(txCtx, "TX-1")
		}))
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(txCtx context.Context) error {
			require.NoError(t, insert(txCtx, "TX-2"))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})

	t.Run("refuses a cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := runner.RunInTx(cancelled, func(context.Context) error {
			called = true
			return nil
		})
		assert.True(t, dErrors.Is(err, dErrors.CodeTimeout))
		assert.False(t, called)
	})
}
