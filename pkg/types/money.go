package types

import "github.com/shopspring/decimal"

// DisplayAmount rounds a monetary amount to two decimal places for
// serialization. Intermediate engine math never rounds; only values leaving
// the process go through this.
func DisplayAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// DecimalPtr copies a decimal into a fresh pointer.
func DecimalPtr(amount decimal.Decimal) *decimal.Decimal {
	return &amount
}

// EqualDecimalPtr compares two optional amounts, treating nil as equal only
// to nil. Used by the cart merge identity for service custom prices.
func EqualDecimalPtr(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
