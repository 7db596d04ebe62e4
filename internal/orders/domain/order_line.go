package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	shareddomain "legacyorders/internal/shared/domain"
)

// LineWidth largeur d'une ligne du fichier legacy, en caractères
const LineWidth = 95

// legacyDateLayout format des dates dans le fichier (YYYYMMDD)
const legacyDateLayout = "20060102"

// field position d'un champ dans la ligne: [start, end)
type field struct {
	name       string
	start, end int
}

func (f field) width() int { return f.end - f.start }

var (
	userIDField       = field{"user id", 0, 10}
	userNameField     = field{"user name", 10, 55}
	orderIDField      = field{"order id", 55, 65}
	productIDField    = field{"product id", 65, 75}
	productValueField = field{"product value", 75, 87}
	purchaseDateField = field{"purchase date", 87, 95}
)

// OrderLine représente une ligne du fichier legacy: un produit d'une commande d'un utilisateur
type OrderLine struct {
	UserID       int64
	UserName     string
	OrderID      int64
	ProductID    int64
	ProductValue shareddomain.Money
	PurchaseDate string // YYYY-MM-DD
}

// ParseLine découpe une ligne à largeur fixe (déjà débarrassée des espaces de bord).
// Les positions sont comptées en caractères, pas en octets, pour supporter les noms accentués.
func ParseLine(raw string) (OrderLine, error) {
	runes := []rune(raw)
	if len(runes) != LineWidth {
		return OrderLine{}, fmt.Errorf("expected %d characters, got %d", LineWidth, len(runes))
	}
	slice := func(f field) string {
		return string(runes[f.start:f.end])
	}

	var (
		line OrderLine
		err  error
	)
	if line.UserID, err = parseLegacyID(userIDField, slice(userIDField)); err != nil {
		return OrderLine{}, err
	}
	line.UserName = strings.TrimSpace(slice(userNameField))
	if line.OrderID, err = parseLegacyID(orderIDField, slice(orderIDField)); err != nil {
		return OrderLine{}, err
	}
	if line.ProductID, err = parseLegacyID(productIDField, slice(productIDField)); err != nil {
		return OrderLine{}, err
	}
	if line.ProductValue, err = shareddomain.ParseMoney(strings.TrimSpace(slice(productValueField))); err != nil {
		return OrderLine{}, fmt.Errorf("%s: %w", productValueField.name, err)
	}

	rawDate := slice(purchaseDateField)
	date, err := time.Parse(legacyDateLayout, rawDate)
	if err != nil {
		return OrderLine{}, fmt.Errorf("%s: invalid date %q", purchaseDateField.name, rawDate)
	}
	line.PurchaseDate = date.Format(shareddomain.DateLayout)

	return line, nil
}

func parseLegacyID(f field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", f.name, raw)
	}
	if id < 0 {
		return 0, fmt.Errorf("%s: negative value %d", f.name, id)
	}
	return id, nil
}

// FormatLine produit la représentation à largeur fixe d'une ligne (inverse de ParseLine).
// Le nom est tronqué à 45 caractères.
func FormatLine(line OrderLine) (string, error) {
	date, err := time.Parse(shareddomain.DateLayout, line.PurchaseDate)
	if err != nil {
		return "", fmt.Errorf("%s: %w", purchaseDateField.name, err)
	}
	value := line.ProductValue.String()
	if len(value) > productValueField.width() {
		return "", errors.New("product value does not fit in 12 characters")
	}

	name := []rune(line.UserName)
	if len(name) > userNameField.width() {
		name = name[:userNameField.width()]
	}

	ids := make([]string, 3)
	for i, part := range []struct {
		f     field
		value int64
	}{{userIDField, line.UserID}, {orderIDField, line.OrderID}, {productIDField, line.ProductID}} {
		s := strconv.FormatInt(part.value, 10)
		if part.value < 0 || len(s) > part.f.width() {
			return "", fmt.Errorf("%s: %d does not fit in %d digits", part.f.name, part.value, part.f.width())
		}
		ids[i] = zeroPad(s, part.f.width())
	}

	var b strings.Builder
	b.Grow(LineWidth)
	b.WriteString(ids[0])
	b.WriteString(string(name))
	b.WriteString(strings.Repeat(" ", userNameField.width()-len(name)))
	b.WriteString(ids[1])
	b.WriteString(ids[2])
	b.WriteString(zeroPad(value, productValueField.width()))
	b.WriteString(date.Format(legacyDateLayout))
	return b.String(), nil
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
