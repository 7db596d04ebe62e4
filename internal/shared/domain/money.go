package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// moneyScale nombre de décimales conservées et affichées (colonnes numeric(12,2))
const moneyScale = 2

// Money représente une valeur monétaire exacte (pas de float64)
type Money struct {
	amount decimal.Decimal
}

// Zero retourne un montant nul
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// NewMoney crée une instance de Money à partir d'un decimal
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errors.New("amount cannot be negative")
	}
	return Money{amount: amount}, nil
}

// ParseMoney lit un montant texte ("0000000123.45", "75.5", ...)
func ParseMoney(raw string) (Money, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return NewMoney(d)
}

// MustParseMoney comme ParseMoney mais panique si invalide (tests, constantes)
func MustParseMoney(raw string) Money {
	m, err := ParseMoney(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// Add additionne deux montants
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// IsZero vérifie si le montant est zéro
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String rend le montant avec exactement deux décimales: 75.5 -> "75.50"
func (m Money) String() string {
	return m.amount.StringFixed(moneyScale)
}

// Value implémente driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implémente sql.Scanner; accepte numeric postgres ([]byte) et REAL/INTEGER/TEXT sqlite
func (m *Money) Scan(src interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	m.amount = d
	return nil
}
