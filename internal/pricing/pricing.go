// Package pricing is the arithmetic core: unit price from base price plus
// modifiers, cart subtotal, tax and order total. All functions are pure and
// total; amounts round to the currency's two minor-unit places only at the
// boundary, never at intermediate steps.
package pricing

import "github.com/shopspring/decimal"

// Line is one cart line as the aggregation functions see it: a per-unit
// price and a quantity.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// UnitPrice returns base plus the sum of all modifiers. Negative modifiers
// are not clamped: a discount can take the unit price below the base and,
// in principle, below zero.
func UnitPrice(base decimal.Decimal, modifiers []decimal.Decimal) decimal.Decimal {
	p := base
	for _, m := range modifiers {
		p = p.Add(m)
	}
	return p
}

// Subtotal sums unit price times quantity over all lines. An empty cart
// yields zero.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Tax applies the externally supplied rate to the subtotal and rounds to the
// minor unit, which is where the currency boundary sits.
func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Mul(rate))
}

// Total is subtotal plus tax, rounded to the minor unit.
func Total(subtotal, tax decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Add(tax))
}

// Round snaps an amount to two minor-unit decimal places, half away from
// zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
