// Package spline defines the Parametric curve contract that Path composes, along with the
// cubic and quintic Hermite segments used to fit waypoints.
package spline

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"go.viam.com/motioncore/spatialmath"
)

const (
	// quadraturePoints is the Gauss-Legendre order used for arc length. Eleven points integrate
	// polynomials up to degree 21 exactly, well beyond the speed profile of a quintic.
	quadraturePoints = 11
	// lengthNewtonIterations bounds the arc length inversion.
	lengthNewtonIterations = 8
	minSpeed               = 1e-12
)

// Parametric is a planar curve queried by a parameter t in [0, 1]. Implementations are immutable
// after construction. Parameters outside [0, 1] extrapolate the curve's own formula.
type Parametric interface {
	Position(t float64) spatialmath.Position
	// Rotation is the heading of the first derivative.
	Rotation(t float64) spatialmath.Rotation
	Transform(t float64) spatialmath.Transform
	// Curvature is signed, positive when turning left.
	Curvature(t float64) float64
	FirstDerivative(t float64) spatialmath.Position
	SecondDerivative(t float64) spatialmath.Position
	// Length returns the arc length from a to b, negative when b < a.
	Length(a, b float64) float64
	// ParameterFromLength inverts Length(0, t), clamped to [0, 1].
	ParameterFromLength(length float64) float64
}

// derivatives is the minimal curve a segment has to supply; everything else in the Parametric
// contract is derived from it by the helpers below.
type derivatives interface {
	FirstDerivative(t float64) spatialmath.Position
	SecondDerivative(t float64) spatialmath.Position
}

func headingAt(c derivatives, t float64) spatialmath.Rotation {
	return c.FirstDerivative(t).Angle()
}

func curvatureAt(c derivatives, t float64) float64 {
	d1 := c.FirstDerivative(t)
	d2 := c.SecondDerivative(t)
	speed := d1.Norm()
	if speed < minSpeed {
		return 0
	}
	return d1.Cross(d2) / (speed * speed * speed)
}

// arcLength integrates the speed |d/dt| from a to b with fixed-order Gauss-Legendre quadrature.
func arcLength(c derivatives, a, b float64) float64 {
	switch {
	case a == b:
		return 0
	case a > b:
		return -arcLength(c, b, a)
	}
	speed := func(t float64) float64 {
		return c.FirstDerivative(t).Norm()
	}
	return quad.Fixed(speed, a, b, quadraturePoints, quad.Legendre{}, 0)
}

// parameterFromLength finds t in [0, 1] with arcLength(0, t) == length using Newton's method
// seeded by assuming uniform speed.
func parameterFromLength(c derivatives, length float64) float64 {
	total := arcLength(c, 0, 1)
	if total <= 0 || length <= 0 {
		return 0
	}
	if length >= total {
		return 1
	}
	t := length / total
	for i := 0; i < lengthNewtonIterations; i++ {
		speed := c.FirstDerivative(t).Norm()
		if speed < minSpeed {
			break
		}
		t -= (arcLength(c, 0, t) - length) / speed
		t = math.Max(0, math.Min(1, t))
	}
	return t
}
