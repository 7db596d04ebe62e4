package domain

import (
	shareddomain "legacyorders/internal/shared/domain"
)

// OrderID identifiant technique (surrogate) d'une commande
type OrderID int64

// ProductID identifiant technique (surrogate) d'un produit
type ProductID int64

// Order commande persistée; unique par (LegacyOrderID, UserID).
// Les produits lui appartiennent exclusivement (suppression en cascade).
type Order struct {
	ID            OrderID
	LegacyOrderID int64
	Date          string // YYYY-MM-DD
	Total         shareddomain.Money
	UserID        UserID
	Products      []*Product
}

// Product produit persisté, rattaché à une seule commande
type Product struct {
	ID              ProductID
	LegacyProductID int64
	Value           shareddomain.Money
	OrderID         OrderID
}

// NewOrder construit une commande et ses produits à partir d'un groupe agrégé
func NewOrder(userID UserID, g *GroupedOrder) *Order {
	order := &Order{
		LegacyOrderID: g.OrderID,
		Date:          g.Date,
		Total:         g.Total,
		UserID:        userID,
		Products:      make([]*Product, 0, len(g.Products)),
	}
	for _, p := range g.Products {
		order.Products = append(order.Products, &Product{
			LegacyProductID: p.ProductID,
			Value:           p.Value,
		})
	}
	return order
}
