package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournal(t *testing.T) {
	t.Run("rollback replays undos newest first", func(t *testing.T) {
		ctx, j := WithJournal(context.Background())
		var order []int
		RecordUndo(ctx, func() { order = append(order, 1) })
		RecordUndo(ctx, func() { order = append(order, 2) })
		assert.Equal(t, 2, j.Len())

		j.Rollback()
		assert.Equal(t, []int{2, 1}, order)
		assert.Equal(t, 0, j.Len())
	})

	t.Run("record outside a unit of work is ignored", func(t *testing.T) {
		called := false
		RecordUndo(context.Background(), func() { called = true })
		assert.False(t, called)
	})

	t.Run("no sql tx on a bare context", func(t *testing.T) {
		_, ok := From(context.Background())
		assert.False(t, ok)
		assert.Equal(t, context.Background(), WithTx(context.Background(), nil))
	})
}
