package geo

import "math"

// compare a and b and consider them equal if
// difference is less than precision e (e.g. e=0.001)
func PrecisionCompare(a, b, e float64) int {
	if math.Abs(a-b) < e {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// Lerp returns the value t of the way from a to b.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
