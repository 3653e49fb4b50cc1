package operator

import "math"

// ipow computes a^b as a float64, matching the `^` operator's promotion to
// Double regardless of operand width (spec.md §4.4 lists `^` alongside the
// integer arithmetic operators but exponentiation is not integer-closed).
func ipow(a, b int64) float64 {
	return math.Pow(float64(a), float64(b))
}

func fmod(a, b float64) float64 {
	return math.Mod(a, b)
}

func fpow(a, b float64) float64 {
	return math.Pow(a, b)
}
