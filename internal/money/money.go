// Package money provides the fixed-point currency arithmetic every product
// calculator depends on. Amounts are shopspring decimals carried at two
// decimal places (minor units); all rounding is half-up and must go through
// this package so previews and settlement agree to the minor unit.
package money

import "github.com/shopspring/decimal"

// MinorUnitPlaces is the scale of every monetary amount.
const MinorUnitPlaces = 2

var hundred = decimal.NewFromInt(100)

// Round normalizes an amount to minor units, rounding half-up.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MinorUnitPlaces)
}

// Percent returns pct percent of amount, rounded to the minor unit.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct).Div(hundred))
}

// DivideEvenly splits total into n equal minor-unit amounts plus a remainder.
// The remainder is always carried by the final unit, never distributed
// silently: perUnit*(n-1) + (perUnit+remainder) == total exactly.
func DivideEvenly(total decimal.Decimal, n int) (perUnit, remainder decimal.Decimal) {
	if n <= 0 {
		return decimal.Zero, decimal.Zero
	}
	count := decimal.NewFromInt(int64(n))
	perUnit = Round(total.Div(count))
	remainder = total.Sub(perUnit.Mul(count))
	return perUnit, remainder
}

// IsPositive reports whether amount is strictly greater than zero.
func IsPositive(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}

// InRange reports whether pct lies in [min, max] inclusive.
func InRange(pct, min, max decimal.Decimal) bool {
	return pct.GreaterThanOrEqual(min) && pct.LessThanOrEqual(max)
}
