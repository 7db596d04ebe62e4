package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"legacyorders/internal/orders/domain"
	"legacyorders/internal/shared/infrastructure"
)

// maxParamsPerStatement borne le nombre de paramètres par requête (limite sqlite/postgres)
const maxParamsPerStatement = 900

// OrderRepository repository SQL des commandes (écriture)
type OrderRepository struct {
	infrastructure.BaseRepository
}

// NewOrderRepository crée un repository commandes
func NewOrderRepository(db *sql.DB, dialect infrastructure.Dialect) *OrderRepository {
	return &OrderRepository{
		BaseRepository: infrastructure.NewBaseRepository(db, dialect),
	}
}

// WithTx retourne un repository qui écrit dans la transaction tx
func (r *OrderRepository) WithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{BaseRepository: r.BaseRepository.WithTx(tx)}
}

// FindByLegacyIDs trouve les commandes d'un utilisateur parmi des identifiants legacy
func (r *OrderRepository) FindByLegacyIDs(ctx context.Context, userID domain.UserID, legacyOrderIDs []int64) ([]*domain.Order, error) {
	var orders []*domain.Order

	for start := 0; start < len(legacyOrderIDs); start += maxParamsPerStatement {
		end := min(start+maxParamsPerStatement, len(legacyOrderIDs))
		chunk := legacyOrderIDs[start:end]

		query := `
			SELECT id, legacy_order_id, date, total, user_id
			FROM orders
			WHERE user_id = ? AND legacy_order_id IN (` + infrastructure.Placeholders(len(chunk)) + `)
			ORDER BY id
		`
		args := make([]interface{}, 0, len(chunk)+1)
		args = append(args, int64(userID))
		for _, id := range chunk {
			args = append(args, id)
		}

		found, err := r.scanOrders(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("find orders of user %d: %w", userID, err)
		}
		orders = append(orders, found...)
	}

	return orders, nil
}

func (r *OrderRepository) scanOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var (
			order  domain.Order
			id     int64
			userID int64
		)
		if err := rows.Scan(&id, &order.LegacyOrderID, &order.Date, &order.Total, &userID); err != nil {
			return nil, err
		}
		order.ID = domain.OrderID(id)
		order.UserID = domain.UserID(userID)
		orders = append(orders, &order)
	}
	return orders, rows.Err()
}

// CreateBatch insère les commandes et leurs produits. Une commande déjà présente
// pour (legacy_order_id, user_id) est ignorée avec ses produits.
func (r *OrderRepository) CreateBatch(ctx context.Context, orders []*domain.Order) (int, error) {
	query := `
		INSERT INTO orders (legacy_order_id, date, total, user_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (legacy_order_id, user_id) DO NOTHING
		RETURNING id
	`

	inserted := 0
	for _, order := range orders {
		var id int64
		err := r.QueryRow(ctx, query, order.LegacyOrderID, order.Date, order.Total, int64(order.UserID)).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("insert order %d: %w", order.LegacyOrderID, err)
		}

		order.ID = domain.OrderID(id)
		for _, p := range order.Products {
			p.OrderID = order.ID
		}
		if err := r.insertProducts(ctx, order.Products); err != nil {
			return inserted, fmt.Errorf("insert products of order %d: %w", order.LegacyOrderID, err)
		}
		inserted++
	}
	return inserted, nil
}

// insertProducts insertion multi-lignes, par paquets
func (r *OrderRepository) insertProducts(ctx context.Context, products []*domain.Product) error {
	const cols = 3
	perStatement := maxParamsPerStatement / cols

	for start := 0; start < len(products); start += perStatement {
		end := min(start+perStatement, len(products))
		chunk := products[start:end]

		values := make([]string, len(chunk))
		args := make([]interface{}, 0, len(chunk)*cols)
		for i, p := range chunk {
			values[i] = "(" + infrastructure.Placeholders(cols) + ")"
			args = append(args, p.LegacyProductID, p.Value, int64(p.OrderID))
		}

		query := `INSERT INTO products (legacy_product_id, value, order_id) VALUES ` + strings.Join(values, ", ")
		if _, err := r.Exec(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}
