package domain

import (
	shareddomain "legacyorders/internal/shared/domain"
)

// orderedMap map indexée par identifiant legacy qui conserve l'ordre de première insertion
type orderedMap[V any] struct {
	keys   []int64
	values map[int64]V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{values: make(map[int64]V)}
}

func (m *orderedMap[V]) get(key int64) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedMap[V]) put(key int64, v V) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *orderedMap[V]) len() int {
	return len(m.keys)
}

// ordered retourne les valeurs dans l'ordre de première insertion
func (m *orderedMap[V]) ordered() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// GroupedProduct produit d'une commande agrégée
type GroupedProduct struct {
	ProductID int64
	Value     shareddomain.Money
}

// GroupedOrder commande agrégée; Total vaut toujours la somme des Products[i].Value
type GroupedOrder struct {
	OrderID  int64
	Date     string
	Products []GroupedProduct
	Total    shareddomain.Money
}

func (o *GroupedOrder) add(productID int64, value shareddomain.Money) {
	o.Products = append(o.Products, GroupedProduct{ProductID: productID, Value: value})
	o.Total = o.Total.Add(value)
}

// GroupedUser utilisateur agrégé avec ses commandes indexées par identifiant legacy
type GroupedUser struct {
	UserID   int64
	UserName string
	orders   *orderedMap[*GroupedOrder]
}

// Orders retourne les commandes dans l'ordre de première apparition dans le fichier
func (u *GroupedUser) Orders() []*GroupedOrder {
	return u.orders.ordered()
}

// OrderIDs retourne les identifiants legacy des commandes, ordre de première apparition
func (u *GroupedUser) OrderIDs() []int64 {
	return append([]int64(nil), u.orders.keys...)
}

// Order retourne la commande d'identifiant legacy orderID
func (u *GroupedUser) Order(orderID int64) (*GroupedOrder, bool) {
	return u.orders.get(orderID)
}

// OrderCount retourne le nombre de commandes distinctes
func (u *GroupedUser) OrderCount() int {
	return u.orders.len()
}

// Group agrège les lignes par utilisateur puis par commande, en une seule passe.
// Le nom de l'utilisateur et la date de la commande sont ceux de leur première ligne.
func Group(lines []OrderLine) []*GroupedUser {
	users := newOrderedMap[*GroupedUser]()

	for _, line := range lines {
		user, ok := users.get(line.UserID)
		if !ok {
			user = &GroupedUser{
				UserID:   line.UserID,
				UserName: line.UserName,
				orders:   newOrderedMap[*GroupedOrder](),
			}
			users.put(line.UserID, user)
		}

		order, ok := user.orders.get(line.OrderID)
		if !ok {
			order = &GroupedOrder{
				OrderID: line.OrderID,
				Date:    line.PurchaseDate,
				Total:   shareddomain.Zero(),
			}
			user.orders.put(line.OrderID, order)
		}

		order.add(line.ProductID, line.ProductValue)
	}

	return users.ordered()
}
