package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifie le moteur SQL derrière le *sql.DB
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect valide un nom de driver
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(name))); d {
	case DialectPostgres, DialectSQLite:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", name)
	}
}

// Rebind convertit les placeholders "?" dans la syntaxe du dialecte ($1, $2... pour postgres).
// Les requêtes du projet n'ont pas de "?" dans des littéraux.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Placeholders retourne "?, ?, ?" pour n paramètres (clauses IN, insert multi-lignes)
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Executor est satisfait par *sql.DB et *sql.Tx
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// UnitOfWork gère les transactions pour les opérations d'écriture
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// DBUnitOfWork implémentation de UnitOfWork avec sql.DB
type DBUnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork crée une nouvelle instance de UnitOfWork
func NewUnitOfWork(db *sql.DB) *DBUnitOfWork {
	return &DBUnitOfWork{db: db}
}

// Execute exécute fn dans une transaction: commit si fn réussit, rollback sinon (panic comprise)
func (uow *DBUnitOfWork) Execute(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := uow.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// BaseRepository structure de base pour les repositories SQL
type BaseRepository struct {
	db      *sql.DB
	tx      *sql.Tx
	dialect Dialect
}

// NewBaseRepository crée un nouveau repository de base
func NewBaseRepository(db *sql.DB, dialect Dialect) BaseRepository {
	return BaseRepository{
		db:      db,
		dialect: dialect,
	}
}

// WithTx retourne une copie liée à la transaction
func (r BaseRepository) WithTx(tx *sql.Tx) BaseRepository {
	r.tx = tx
	return r
}

// Executor retourne l'exécuteur approprié (DB ou Tx)
func (r *BaseRepository) Executor() Executor {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Query exécute une requête de lecture
func (r *BaseRepository) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.Executor().QueryContext(ctx, r.dialect.Rebind(query), args...)
}

// QueryRow exécute une requête de lecture pour une seule ligne
func (r *BaseRepository) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.Executor().QueryRowContext(ctx, r.dialect.Rebind(query), args...)
}

// Exec exécute une requête d'écriture
func (r *BaseRepository) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.Executor().ExecContext(ctx, r.dialect.Rebind(query), args...)
}
