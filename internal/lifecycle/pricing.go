package lifecycle

import "math"

// ApplyDiscount applies a percentage discount to a price in minor currency
// units. The percent is rounded to two decimal places and clamped to
// [0, 100] before use. Minor-unit rounding is round half up; that choice is
// part of the pricing contract and must not change silently.
func ApplyDiscount(basePriceCents int64, discountPercent float64) int64 {
	if basePriceCents <= 0 {
		return 0
	}

	pct := math.Round(discountPercent*100) / 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	final := math.Floor(float64(basePriceCents)*(1-pct/100) + 0.5)
	if final < 0 {
		return 0
	}
	return int64(final)
}
