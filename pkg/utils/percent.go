package utils

import "math"

// RatioToPercentFloat converts a [0,1] fraction to an unrounded 0-100
// percentage for aggregates. Out-of-range input is clamped.
func RatioToPercentFloat(ratio float64) float64 {
	if math.IsNaN(ratio) || ratio <= 0 {
		return 0
	}
	if ratio >= 1 {
		return 100
	}
	return ratio * 100
}

// RatioToPercent is the rounded conversion from an internal [0,1] fraction to a
// 0-100 display percentage. Out-of-range input is clamped.
func RatioToPercent(ratio float64) int {
	return int(math.Round(RatioToPercentFloat(ratio)))
}
