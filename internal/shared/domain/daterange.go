package domain

import (
	"fmt"
	"time"
)

// DateLayout format ISO des dates exposées et stockées (colonne texte)
const DateLayout = "2006-01-02"

// DateRange représente une période inclusive [start, end] au jour près
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange crée une période. Une période inversée (end < start) est permise
// et ne contient aucune date.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{start: start, end: end}
}

// ParseDateRange construit une période à partir de deux dates YYYY-MM-DD optionnelles.
// Les deux bornes sont nécessaires: si l'une manque, ok vaut false et aucune erreur
// n'est retournée (la borne seule est ignorée).
func ParseDateRange(start, end string) (dr DateRange, ok bool, err error) {
	if start == "" || end == "" {
		return DateRange{}, false, nil
	}
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, false, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, false, err
	}
	return NewDateRange(s, e), true, nil
}

// ParseDate lit une date YYYY-MM-DD
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}

// StartString retourne la borne basse au format YYYY-MM-DD
func (dr DateRange) StartString() string {
	return dr.start.Format(DateLayout)
}

// EndString retourne la borne haute au format YYYY-MM-DD
func (dr DateRange) EndString() string {
	return dr.end.Format(DateLayout)
}
