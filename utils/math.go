// Package utils contains small numeric helpers shared by the motion packages.
package utils

import (
	"math"

	"golang.org/x/exp/constraints"
)

// DefaultEpsilon is the tolerance used by the Float64AlmostEqual style helpers when none is given.
const DefaultEpsilon = 1e-9

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Square returns n squared.
func Square(n float64) float64 {
	return n * n
}

// Sign returns 1 for positive, -1 for negative and 0 for zero (or NaN) inputs.
func Sign(n float64) float64 {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// Clamp limits v to [lo, hi]. NaN passes through.
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FiniteOr returns v when it is finite and fallback otherwise.
func FiniteOr(v, fallback float64) float64 {
	if IsFinite(v) {
		return v
	}
	return fallback
}

// Sinc returns sin(x)/x, with the limit value 1 near zero.
func Sinc(x float64) float64 {
	if math.Abs(x) < 1e-9 {
		return 1
	}
	return math.Sin(x) / x
}

// WrapToPi returns the angle in radians mapped into [-pi, pi).
func WrapToPi(theta float64) float64 {
	wrapped := math.Mod(theta+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// LargeSentinel stands in for an infinite radius or curvature so that divisions downstream stay
// finite. A radius of LargeSentinel is treated as driving straight.
const LargeSentinel = 2e16
