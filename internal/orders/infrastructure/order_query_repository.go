package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"legacyorders/internal/orders/domain"
	shareddomain "legacyorders/internal/shared/domain"
	"legacyorders/internal/shared/infrastructure"
)

// OrderQueryRepository repository pour les requêtes de lecture sur les commandes
type OrderQueryRepository struct {
	infrastructure.BaseRepository
}

// NewOrderQueryRepository crée un nouveau repository de lecture pour les commandes
func NewOrderQueryRepository(db *sql.DB, dialect infrastructure.Dialect) *OrderQueryRepository {
	return &OrderQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db, dialect),
	}
}

// FindUsersWithOrders charge utilisateurs, commandes et produits en une requête jointe.
// Sans filtre, les utilisateurs sans commande sont retournés avec une liste vide.
func (r *OrderQueryRepository) FindUsersWithOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.User, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.OrderID != nil {
		where = append(where, "o.legacy_order_id = ?")
		args = append(args, *filter.OrderID)
	}
	if filter.DateRange != nil {
		where = append(where, "o.date BETWEEN ? AND ?")
		args = append(args, filter.DateRange.StartString(), filter.DateRange.EndString())
	}

	query := `
		SELECT u.id, u.legacy_user_id, u.name,
		       o.id, o.legacy_order_id, o.date, o.total,
		       p.id, p.legacy_product_id, p.value
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id
		LEFT JOIN products p ON p.order_id = o.id
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY u.id, o.id, p.id"

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users with orders: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	usersByID := make(map[domain.UserID]*domain.User)
	ordersByID := make(map[domain.OrderID]*domain.Order)
	for rows.Next() {
		var (
			userID        int64
			legacyUserID  int64
			name          string
			orderID       sql.NullInt64
			legacyOrderID sql.NullInt64
			date          sql.NullString
			total         sql.NullString
			productID     sql.NullInt64
			legacyProdID  sql.NullInt64
			value         sql.NullString
		)
		if err := rows.Scan(&userID, &legacyUserID, &name,
			&orderID, &legacyOrderID, &date, &total,
			&productID, &legacyProdID, &value); err != nil {
			return nil, fmt.Errorf("scan users with orders: %w", err)
		}

		user, ok := usersByID[domain.UserID(userID)]
		if !ok {
			user = &domain.User{
				ID:           domain.UserID(userID),
				LegacyUserID: legacyUserID,
				Name:         name,
				Orders:       []*domain.Order{},
			}
			usersByID[user.ID] = user
			users = append(users, user)
		}

		if !orderID.Valid {
			continue
		}
		order, ok := ordersByID[domain.OrderID(orderID.Int64)]
		if !ok {
			orderTotal, err := shareddomain.ParseMoney(total.String)
			if err != nil {
				return nil, fmt.Errorf("order %d total: %w", orderID.Int64, err)
			}
			order = &domain.Order{
				ID:            domain.OrderID(orderID.Int64),
				LegacyOrderID: legacyOrderID.Int64,
				Date:          date.String,
				Total:         orderTotal,
				UserID:        user.ID,
				Products:      []*domain.Product{},
			}
			ordersByID[order.ID] = order
			user.Orders = append(user.Orders, order)
		}

		if !productID.Valid {
			continue
		}
		productValue, err := shareddomain.ParseMoney(value.String)
		if err != nil {
			return nil, fmt.Errorf("product %d value: %w", productID.Int64, err)
		}
		order.Products = append(order.Products, &domain.Product{
			ID:              domain.ProductID(productID.Int64),
			LegacyProductID: legacyProdID.Int64,
			Value:           productValue,
			OrderID:         order.ID,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users with orders: %w", err)
	}

	return users, nil
}
