//go:build integration
// +build integration

package repo

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationStore(t *testing.T, readOnly bool) *PostgresStore {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	cfg, err := pgx.ParseConfig(url)
	require.NoError(t, err)
	store, err := NewPostgresStore(cfg, readOnly)
	require.NoError(t, err)
	return store
}

func TestPostgresStore_Integration(t *testing.T) {
	ctx := context.Background()
	store := newIntegrationStore(t, true)

	require.NoError(t, store.Ping(ctx))

	t.Run("schema", func(t *testing.T) {
		_, err := store.Schema(ctx)
		assert.NoError(t, err)
	})

	t.Run("query keeps column order", func(t *testing.T) {
		rs, err := store.Query(ctx, `SELECT 'Alice' AS name, 30 AS age UNION ALL SELECT 'Bob', 41`)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "age"}, rs.Columns)
		require.Len(t, rs.Rows, 2)
		assert.Equal(t, "Alice", rs.Rows[0][0])
	})

	t.Run("writes are rejected in read-only mode", func(t *testing.T) {
		_, err := store.Query(ctx, `CREATE TEMP TABLE hr_probe (id int)`)
		assert.Error(t, err)
	})
}
