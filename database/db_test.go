package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacyorders/internal/config"
	"legacyorders/internal/shared/infrastructure"
)

func TestOpen_SQLiteAndSchema(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := Open(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "orders.sqlite"),
	})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, infrastructure.DialectSQLite, dialect)

	require.NoError(t, EnsureSchema(ctx, db, dialect))
	require.NoError(t, EnsureSchema(ctx, db, dialect), "schema must be idempotent")

	for _, table := range []string{"users", "orders", "products"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, table, name)
	}
}

func TestSchema_CascadeDelete(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "cascade.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, EnsureSchema(ctx, db, infrastructure.DialectSQLite))

	_, err = db.ExecContext(ctx, "INSERT INTO users (id, legacy_user_id, name) VALUES (1, 10, 'Alice')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO orders (id, legacy_order_id, date, total, user_id) VALUES (1, 100, '2021-01-01', '1.00', 1)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO products (legacy_product_id, value, order_id) VALUES (5, '1.00', 1)")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "DELETE FROM users WHERE id = 1")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
