package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"legacyorders/internal/config"
	"legacyorders/internal/shared/infrastructure"
)

// Open ouvre la base configurée, règle le pool de connexions et vérifie la connexion
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, infrastructure.Dialect, error) {
	dialect, err := infrastructure.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	var db *sql.DB
	switch dialect {
	case infrastructure.DialectPostgres:
		db, err = sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	case infrastructure.DialectSQLite:
		db, err = OpenSQLite(cfg.Path)
		if err != nil {
			return nil, "", err
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// OpenSQLite ouvre un fichier sqlite avec clés étrangères actives.
// sqlite sérialise les écritures: une seule connexion évite les SQLITE_BUSY.
func OpenSQLite(path string) (*sql.DB, error) {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")

	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
