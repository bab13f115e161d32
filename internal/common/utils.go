package common

import "math"

// RoundTo rounds v half away from zero to the given number of decimal places.
// Negative places are treated as zero.
func RoundTo(v float64, places int) float64 {
	if places < 0 {
		places = 0
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
