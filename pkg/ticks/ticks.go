package ticks

import "github.com/shopspring/decimal"

// RoundToTick rounds value to the nearest integer multiple of tickSize.
// The division and multiplication are done with exact decimal arithmetic,
// so float error accumulated upstream is scrubbed: RoundToTick(401.46, 0.01)
// returns exactly 401.46, not 401.46000000000004. The result is idempotent.
//
// Ties round half away from zero. This is externally observable in placed
// order prices, so the rule is pinned by tests.
func RoundToTick(value float64, tickSize decimal.Decimal) decimal.Decimal {
	if tickSize.IsZero() {
		return decimal.NewFromFloat(value)
	}
	n := decimal.NewFromFloat(value).Div(tickSize).Round(0)
	return n.Mul(tickSize)
}

// RoundDecimalToTick is RoundToTick for values already in decimal form.
func RoundDecimalToTick(value, tickSize decimal.Decimal) decimal.Decimal {
	if tickSize.IsZero() {
		return value
	}
	return value.Div(tickSize).Round(0).Mul(tickSize)
}
