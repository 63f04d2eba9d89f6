package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an optional amount with its currency. Exports frequently omit
// the threshold amount, so the amount is nullable.
type Money struct {
	Amount   decimal.NullDecimal `json:"amount" yaml:"amount"`
	Currency string              `json:"currency" yaml:"currency"`
}

// NewMoney creates a Money holding amount.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{
		Amount:   decimal.NewNullDecimal(amount),
		Currency: currency,
	}
}

// NoAmount creates a Money without amount.
func NoAmount(currency string) Money {
	return Money{Currency: currency}
}

// IsSet reports whether an amount is present.
func (m Money) IsSet() bool {
	return m.Amount.Valid
}

// Value returns the amount as a table cell: a decimal.Decimal or nil.
func (m Money) Value() any {
	if !m.IsSet() {
		return nil
	}
	return m.Amount.Decimal
}

// CurrencyValue returns the currency as a table cell, nil when unknown.
func (m Money) CurrencyValue() any {
	if m.Currency == "" {
		return nil
	}
	return m.Currency
}

// String returns a string representation of the money value
func (m Money) String() string {
	if !m.Amount.Valid {
		return "N/A"
	}
	if m.Currency == "" {
		return m.Amount.Decimal.String()
	}
	return fmt.Sprintf("%s %s", m.Amount.Decimal.String(), m.Currency)
}

// Equal returns true if two Money values are equal (same amount and currency)
func (m Money) Equal(other Money) bool {
	if m.Currency != other.Currency || m.Amount.Valid != other.Amount.Valid {
		return false
	}
	return !m.Amount.Valid || m.Amount.Decimal.Equal(other.Amount.Decimal)
}
