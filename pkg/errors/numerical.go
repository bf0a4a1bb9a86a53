package errors

import "math"

// SafeDivide divides numerator by denominator, returning 0 when the
// denominator is zero or the result is not finite.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}
	return result
}

// ClipValue clamps value into [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClipProbability clamps p into [eps, 1-eps] so that log-loss terms stay
// finite.
func ClipProbability(p, eps float64) float64 {
	return ClipValue(p, eps, 1-eps)
}
