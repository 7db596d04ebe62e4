package infrastructure

import (
	"context"
	"database/sql"

	"legacyorders/internal/orders/domain"
	"legacyorders/internal/shared/infrastructure"
)

// SQLUnitOfWork exécute un traitement dans une transaction SQL avec des repositories liés
type SQLUnitOfWork struct {
	uow    infrastructure.UnitOfWork
	users  *UserRepository
	orders *OrderRepository
}

// NewSQLUnitOfWork crée l'unité de travail des imports
func NewSQLUnitOfWork(db *sql.DB, dialect infrastructure.Dialect) *SQLUnitOfWork {
	return &SQLUnitOfWork{
		uow:    infrastructure.NewUnitOfWork(db),
		users:  NewUserRepository(db, dialect),
		orders: NewOrderRepository(db, dialect),
	}
}

// Execute implémente domain.UnitOfWork
func (u *SQLUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return u.uow.Execute(ctx, func(tx *sql.Tx) error {
		return fn(ctx, domain.Repositories{
			Users:  u.users.WithTx(tx),
			Orders: u.orders.WithTx(tx),
		})
	})
}
