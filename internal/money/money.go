// Package money holds the canonical monetary arithmetic helpers. Every
// figure written to a document passes through here, so no NaN or Inf can
// ever reach a persisted total.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Coerce returns v when it is a finite number, fallback otherwise.
func Coerce(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Round2 rounds v to 2 decimal places, half away from zero, on the decimal
// representation rather than the raw binary float.
func Round2(v float64) float64 {
	return round2(decimal.NewFromFloat(Coerce(v, 0)))
}

func round2(d decimal.Decimal) float64 {
	out, _ := d.Round(2).Float64()
	return out
}

// Mul multiplies two amounts and rounds the product to 2 decimal places.
func Mul(a, b float64) float64 {
	return round2(decimal.NewFromFloat(Coerce(a, 0)).
		Mul(decimal.NewFromFloat(Coerce(b, 0))))
}

// Percent applies rate (expressed as a percentage, e.g. 15 for 15%) to
// amount and rounds to 2 decimal places.
func Percent(amount, rate float64) float64 {
	return round2(decimal.NewFromFloat(Coerce(amount, 0)).
		Mul(decimal.NewFromFloat(Coerce(rate, 0))).
		Div(decimal.NewFromInt(100)))
}

// Sum adds the given amounts with decimal precision and rounds the result
// to 2 decimal places.
func Sum(vs ...float64) float64 {
	total := decimal.Zero
	for _, v := range vs {
		total = total.Add(decimal.NewFromFloat(Coerce(v, 0)))
	}
	return round2(total)
}

// Clamp restricts v to the inclusive range [min, max].
func Clamp(v, min, max float64) float64 {
	v = Coerce(v, 0)
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
