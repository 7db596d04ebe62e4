package domain

import (
	"fmt"

	shareddomain "legacyorders/internal/shared/domain"
)

// OrderFilter critères de recherche des commandes; champs nil = pas de filtre
type OrderFilter struct {
	OrderID   *int64
	DateRange *shareddomain.DateRange
}

// NewOrderFilter valide les paramètres bruts. Chaque date fournie doit être au format
// YYYY-MM-DD; la période n'est appliquée que si les deux bornes sont présentes.
func NewOrderFilter(orderID *int64, startDate, endDate string) (OrderFilter, error) {
	var f OrderFilter

	if orderID != nil {
		if *orderID < 1 {
			return OrderFilter{}, fmt.Errorf("%w: orderId must be >= 1", ErrInvalidFilter)
		}
		id := *orderID
		f.OrderID = &id
	}

	for _, p := range []struct{ name, raw string }{{"startDate", startDate}, {"endDate", endDate}} {
		if p.raw == "" {
			continue
		}
		if _, err := shareddomain.ParseDate(p.raw); err != nil {
			return OrderFilter{}, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, p.name, err)
		}
	}

	dr, ok, err := shareddomain.ParseDateRange(startDate, endDate)
	if err != nil {
		return OrderFilter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if ok {
		f.DateRange = &dr
	}
	return f, nil
}
