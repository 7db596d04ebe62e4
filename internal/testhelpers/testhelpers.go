package testhelpers

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"legacyorders/database"
	"legacyorders/internal/config"
	ordersdomain "legacyorders/internal/orders/domain"
	ordersinfra "legacyorders/internal/orders/infrastructure"
	shareddomain "legacyorders/internal/shared/domain"
	sharedinfra "legacyorders/internal/shared/infrastructure"
)

// TestContext contient les dépendances des tests d'intégration
// Note: ne contient PAS les services pour éviter les import cycles
type TestContext struct {
	DB      *sql.DB
	Dialect sharedinfra.Dialect

	// Repositories
	UserRepo       *ordersinfra.UserRepository
	OrderRepo      *ordersinfra.OrderRepository
	OrderQueryRepo *ordersinfra.OrderQueryRepository
	UnitOfWork     *ordersinfra.SQLUnitOfWork

	// Infrastructure
	Cache *sharedinfra.ShardedCache
}

// SetupTestDB ouvre une base sqlite dans un répertoire temporaire, schéma appliqué.
// La base est fermée à la fin du test.
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := database.OpenSQLite(filepath.Join(tb.TempDir(), "test.sqlite"))
	if err != nil {
		tb.Fatalf("Failed to open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	if err := database.EnsureSchema(context.Background(), db, sharedinfra.DialectSQLite); err != nil {
		tb.Fatalf("Failed to apply schema: %v", err)
	}
	return db
}

// SetupPostgresDB se connecte à la base Postgres de test (variables DB_* ou .env),
// applique le schéma et vide les tables. Skip si la base n'est pas joignable.
func SetupPostgresDB(tb testing.TB) *sql.DB {
	tb.Helper()
	SkipIfNoDatabase(tb)

	db, _, err := database.Open(context.Background(), postgresConfig())
	if err != nil {
		tb.Fatalf("Failed to open database: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db, sharedinfra.DialectPostgres); err != nil {
		tb.Fatalf("Failed to apply schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE products, orders, users RESTART IDENTITY CASCADE"); err != nil {
		tb.Fatalf("Failed to truncate tables: %v", err)
	}
	return db
}

// SetupTestContext initialise un contexte de test sqlite avec repositories et cache
func SetupTestContext(tb testing.TB) *TestContext {
	tb.Helper()
	return newTestContext(tb, SetupTestDB(tb), sharedinfra.DialectSQLite)
}

// SetupPostgresTestContext comme SetupTestContext, sur Postgres
func SetupPostgresTestContext(tb testing.TB) *TestContext {
	tb.Helper()
	return newTestContext(tb, SetupPostgresDB(tb), sharedinfra.DialectPostgres)
}

func newTestContext(tb testing.TB, db *sql.DB, dialect sharedinfra.Dialect) *TestContext {
	ctx := &TestContext{
		DB:             db,
		Dialect:        dialect,
		UserRepo:       ordersinfra.NewUserRepository(db, dialect),
		OrderRepo:      ordersinfra.NewOrderRepository(db, dialect),
		OrderQueryRepo: ordersinfra.NewOrderQueryRepository(db, dialect),
		UnitOfWork:     ordersinfra.NewSQLUnitOfWork(db, dialect),
		Cache:          sharedinfra.NewShardedCache(4, time.Minute),
	}
	tb.Cleanup(ctx.Cache.Close)
	return ctx
}

// Count retourne le nombre de lignes d'une table
func (ctx *TestContext) Count(tb testing.TB, table string) int {
	tb.Helper()
	var n int
	if err := ctx.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		tb.Fatalf("count %s: %v", table, err)
	}
	return n
}

// Line construit une ligne du fichier legacy
func Line(userID int64, name string, orderID, productID int64, value, date string) ordersdomain.OrderLine {
	return ordersdomain.OrderLine{
		UserID:       userID,
		UserName:     name,
		OrderID:      orderID,
		ProductID:    productID,
		ProductValue: shareddomain.MustParseMoney(value),
		PurchaseDate: date,
	}
}

// FixedWidthContent encode des lignes au format à largeur fixe, une par ligne
func FixedWidthContent(tb testing.TB, lines ...ordersdomain.OrderLine) string {
	tb.Helper()
	var b strings.Builder
	for _, l := range lines {
		raw, err := ordersdomain.FormatLine(l)
		if err != nil {
			tb.Fatalf("format line: %v", err)
		}
		b.WriteString(raw)
		b.WriteByte('\n')
	}
	return b.String()
}

// SkipIfNoDatabase skip le test si la base Postgres n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	cfg := postgresConfig()
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		tb.Skip("Database not available:", err)
	}
}

func postgresConfig() config.DatabaseConfig {
	_ = godotenv.Load("../../.env")

	return config.DatabaseConfig{
		Driver:          "postgres",
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnv("DB_PORT", "5432"),
		User:            getEnv("DB_USER", "orders"),
		Password:        getEnv("DB_PASSWORD", "orders"),
		Name:            getEnv("DB_NAME", "orders_test"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
