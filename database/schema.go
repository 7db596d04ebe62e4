package database

import (
	"context"
	"database/sql"
	"fmt"

	"legacyorders/internal/shared/infrastructure"
)

// Les dates sont stockées en texte YYYY-MM-DD: l'ordre lexical est l'ordre chronologique.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		legacy_user_id BIGINT NOT NULL,
		name VARCHAR(45) NOT NULL,
		CONSTRAINT uq_users_legacy_user_id UNIQUE (legacy_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		legacy_order_id BIGINT NOT NULL,
		date TEXT NOT NULL,
		total NUMERIC(12,2) NOT NULL DEFAULT 0,
		user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT uq_orders_legacy_order_user UNIQUE (legacy_order_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		legacy_product_id BIGINT NOT NULL,
		value NUMERIC(12,2) NOT NULL,
		order_id BIGINT NOT NULL REFERENCES orders (id) ON DELETE CASCADE ON UPDATE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders (date)`,
	`CREATE INDEX IF NOT EXISTS idx_products_order_id ON products (order_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		legacy_user_id INTEGER NOT NULL,
		name VARCHAR(45) NOT NULL,
		CONSTRAINT uq_users_legacy_user_id UNIQUE (legacy_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		legacy_order_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		total DECIMAL(12,2) NOT NULL DEFAULT 0,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT uq_orders_legacy_order_user UNIQUE (legacy_order_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		legacy_product_id INTEGER NOT NULL,
		value DECIMAL(12,2) NOT NULL,
		order_id INTEGER NOT NULL REFERENCES orders (id) ON DELETE CASCADE ON UPDATE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders (date)`,
	`CREATE INDEX IF NOT EXISTS idx_products_order_id ON products (order_id)`,
}

// EnsureSchema crée les tables si elles n'existent pas (idempotent)
func EnsureSchema(ctx context.Context, db *sql.DB, dialect infrastructure.Dialect) error {
	stmts := sqliteSchema
	if dialect == infrastructure.DialectPostgres {
		stmts = postgresSchema
	}

	uow := infrastructure.NewUnitOfWork(db)
	return uow.Execute(ctx, func(tx *sql.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}
