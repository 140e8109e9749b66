// Package catalog holds the value types shared by the shopping engine:
// money amounts and point-in-time product snapshots.
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is an immutable amount plus ISO-4217 currency code.
type Price struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
}

// NewPrice builds a Price from a decimal string such as "25.00".
func NewPrice(amount, currencyCode string) (Price, error) {
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Price{}, fmt.Errorf("parse price amount %q: %w", amount, err)
	}
	if currencyCode == "" {
		return Price{}, fmt.Errorf("price %q has empty currency code", amount)
	}
	return Price{Amount: parsed, CurrencyCode: currencyCode}, nil
}

// MustPrice is NewPrice for test fixtures and seed catalogs.
func MustPrice(amount, currencyCode string) Price {
	price, err := NewPrice(amount, currencyCode)
	if err != nil {
		panic(err)
	}
	return price
}

// IsZero reports whether the price is the zero value.
func (p Price) IsZero() bool {
	return p.CurrencyCode == "" && p.Amount.IsZero()
}

// Equal compares amount and currency. Decimal comparison ignores exponent
// representation, so "25.0" equals "25.00".
func (p Price) Equal(other Price) bool {
	return p.CurrencyCode == other.CurrencyCode && p.Amount.Equal(other.Amount)
}

func (p Price) String() string {
	return p.Amount.String() + " " + p.CurrencyCode
}
