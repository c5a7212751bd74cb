// Package money converts between the engine's integer-cent prices and the
// dollar amounts that travel over the wire. All conversions go through
// shopspring/decimal so float artifacts (100*1.23 = 123.00000000000001)
// never leak into the books.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToCents converts a dollar amount to integer cents, rounding half away
// from zero. This is the coercion applied to all client-supplied prices.
func ToCents(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Mul(hundred).Round(0).IntPart()
}

// CeilCents converts a dollar amount to integer cents, rounding up.
// Generated prices use this so a price is never reported below its
// true value.
func CeilCents(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Mul(hundred).Ceil().IntPart()
}

// ToDollars converts integer cents back to a dollar amount for the wire.
func ToDollars(cents int64) float64 {
	f, _ := decimal.New(cents, -2).Float64()
	return f
}

// Format renders cents as a fixed two-decimal dollar string.
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
