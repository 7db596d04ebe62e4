package application

import "legacyorders/internal/orders/domain"

// UserOrderResponse utilisateur et ses commandes, tel que renvoyé par l'API
type UserOrderResponse struct {
	UserID int64           `json:"user_id"`
	Name   string          `json:"name"`
	Orders []OrderResponse `json:"orders"`
}

// OrderResponse commande; Total formaté avec deux décimales ("75.50")
type OrderResponse struct {
	OrderID  int64             `json:"order_id"`
	Total    string            `json:"total"`
	Date     string            `json:"date"`
	Products []ProductResponse `json:"products"`
}

// ProductResponse produit d'une commande
type ProductResponse struct {
	ProductID int64  `json:"product_id"`
	Value     string `json:"value"`
}

// OrderMapper convertit les agrégats persistés en réponses.
// Les collections ne sont jamais nil: une liste vide est sérialisée en [].
type OrderMapper struct{}

// ToResponses convertit une liste d'utilisateurs
func (m OrderMapper) ToResponses(users []*domain.User) []UserOrderResponse {
	out := make([]UserOrderResponse, 0, len(users))
	for _, u := range users {
		out = append(out, m.toUser(u))
	}
	return out
}

func (m OrderMapper) toUser(u *domain.User) UserOrderResponse {
	orders := make([]OrderResponse, 0, len(u.Orders))
	for _, o := range u.Orders {
		orders = append(orders, m.toOrder(o))
	}
	return UserOrderResponse{
		UserID: u.LegacyUserID,
		Name:   u.Name,
		Orders: orders,
	}
}

func (m OrderMapper) toOrder(o *domain.Order) OrderResponse {
	products := make([]ProductResponse, 0, len(o.Products))
	for _, p := range o.Products {
		products = append(products, ProductResponse{
			ProductID: p.LegacyProductID,
			Value:     p.Value.String(),
		})
	}
	return OrderResponse{
		OrderID:  o.LegacyOrderID,
		Total:    o.Total.String(),
		Date:     o.Date,
		Products: products,
	}
}
