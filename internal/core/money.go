// Package core holds the domain model of the finance tracker.
//
// This file contains the Money type. Amounts travel as decimals in JSON and
// are persisted as integer cents so that SQL sums stay exact.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount with two fractional digits of precision.
type Money struct {
	decimal.Decimal
}

// NewMoneyFromCents builds a Money value from a cents amount.
func NewMoneyFromCents(cents int64) Money {
	return Money{Decimal: decimal.New(cents, -2)}
}

// ParseMoney converts a decimal string to Money.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Extra fractional
// digits are rounded half-up to cents.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d.Round(2)}, nil
}

// Cents returns the amount in cents, rounding half-up.
func (m Money) Cents() int64 {
	return m.Decimal.Round(2).Shift(2).IntPart()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Decimal.IsPositive()
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// Float64 returns the amount for display purposes only.
func (m Money) Float64() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

// MarshalJSON renders the amount as a fixed two-digit decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.StringFixed(2))
}

// UnmarshalJSON accepts JSON numbers and numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return ErrInvalidAmount
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return ErrInvalidAmount
	}
	m.Decimal = d.Round(2)
	return nil
}

// String implements fmt.Stringer.
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}
