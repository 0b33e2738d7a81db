// Package mathutil provides small numeric helpers shared by the scoring code.
package mathutil

import "math"

// Round rounds x to the given number of decimal places, halves to even.
func Round(x float64, places int) float64 {
	scale := math.Pow10(places)

	return math.RoundToEven(x*scale) / scale
}

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 {
	return Round(x, 2)
}

// Ratio returns num/den, or 0 when den is zero.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}

	return num / den
}

// Percent returns 100*part/total rounded to two places, or 0 when total is zero.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}

	return Round2(float64(part) * 100 / float64(total))
}

// FloorOne returns v, or 1 when v is not positive.
func FloorOne[T ~int | ~float64](v T) T {
	if v <= 0 {
		return 1
	}

	return v
}
