package core

import "math"

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 restricts v to the unit interval.
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Sanitize replaces NaN and infinite values with zero. Derived quantities
// (gradients, density ratios) must pass through here before storage.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SanitizeClamp sanitizes then clamps in one step.
func SanitizeClamp(v, lo, hi float64) float64 {
	return Clamp(Sanitize(v), lo, hi)
}
