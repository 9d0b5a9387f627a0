package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigratorLoad(t *testing.T) {
	migrations, err := NewMigrator(nil).Load()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(migrations), 2)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "migrations are numbered without gaps")
		assert.NotEmpty(t, m.SQL)
	}
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS claims")
	assert.Contains(t, migrations[1].SQL, "CREATE TABLE IF NOT EXISTS outbox")
}
