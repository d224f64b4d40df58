package spline

import (
	"fmt"

	"go.viam.com/motioncore/spatialmath"
)

// polynomial holds power-basis coefficients, lowest order first.
type polynomial []float64

func (p polynomial) eval(t float64) float64 {
	var v float64
	for i := len(p) - 1; i >= 0; i-- {
		v = v*t + p[i]
	}
	return v
}

func (p polynomial) derivative() polynomial {
	if len(p) <= 1 {
		return polynomial{0}
	}
	d := make(polynomial, len(p)-1)
	for i := 1; i < len(p); i++ {
		d[i-1] = float64(i) * p[i]
	}
	return d
}

// Segment is a polynomial planar curve. Hermite constructors produce Segments; the type implements
// Parametric.
type Segment struct {
	kind   string
	x, y   polynomial
	dx, dy polynomial
	ddx    polynomial
	ddy    polynomial
}

func newSegment(kind string, x, y polynomial) *Segment {
	dx, dy := x.derivative(), y.derivative()
	return &Segment{
		kind: kind,
		x:    x, y: y,
		dx: dx, dy: dy,
		ddx: dx.derivative(), ddy: dy.derivative(),
	}
}

// HermiteOptions shapes the boundary derivatives of a Hermite segment.
type HermiteOptions struct {
	// TangentScale multiplies the chord length to get the magnitude of the boundary first
	// derivatives. Zero means 1.
	TangentScale float64
	// StartCurvature and EndCurvature set the boundary curvature of quintic segments. Cubic segments
	// ignore them.
	StartCurvature float64
	EndCurvature   float64
}

func (opts HermiteOptions) tangents(start, end spatialmath.Transform) (spatialmath.Position, spatialmath.Position) {
	scale := opts.TangentScale
	if scale == 0 {
		scale = 1
	}
	magnitude := start.Distance(end) * scale
	return start.Rotation.Unit().Scale(magnitude), end.Rotation.Unit().Scale(magnitude)
}

// NewCubicHermite returns the cubic Hermite segment from start to end leaving and arriving along
// their headings.
func NewCubicHermite(start, end spatialmath.Transform, opts HermiteOptions) *Segment {
	m0, m1 := opts.tangents(start, end)
	coeffs := func(p0, v0, p1, v1 float64) polynomial {
		return polynomial{
			p0,
			v0,
			-3*p0 - 2*v0 + 3*p1 - v1,
			2*p0 + v0 - 2*p1 + v1,
		}
	}
	return newSegment("cubic",
		coeffs(start.Position.X, m0.X, end.Position.X, m1.X),
		coeffs(start.Position.Y, m0.Y, end.Position.Y, m1.Y),
	)
}

// NewQuinticHermite returns the quintic Hermite segment from start to end. Besides the headings it
// matches the boundary curvatures in opts, which keeps curvature continuous across waypoints.
func NewQuinticHermite(start, end spatialmath.Transform, opts HermiteOptions) *Segment {
	v0, v1 := opts.tangents(start, end)
	// With |d'| fixed, curvature k requires a normal acceleration of k|d'|^2.
	a0 := v0.Ortho().Scale(opts.StartCurvature * v0.Norm())
	a1 := v1.Ortho().Scale(opts.EndCurvature * v1.Norm())
	coeffs := func(p0, v0, a0, p1, v1, a1 float64) polynomial {
		return polynomial{
			p0,
			v0,
			a0 / 2,
			-10*p0 - 6*v0 - 1.5*a0 + 0.5*a1 - 4*v1 + 10*p1,
			15*p0 + 8*v0 + 1.5*a0 - a1 + 7*v1 - 15*p1,
			-6*p0 - 3*v0 - 0.5*a0 + 0.5*a1 - 3*v1 + 6*p1,
		}
	}
	return newSegment("quintic",
		coeffs(start.Position.X, v0.X, a0.X, end.Position.X, v1.X, a1.X),
		coeffs(start.Position.Y, v0.Y, a0.Y, end.Position.Y, v1.Y, a1.Y),
	)
}

// Position returns the point at t.
func (s *Segment) Position(t float64) spatialmath.Position {
	return spatialmath.NewPosition(s.x.eval(t), s.y.eval(t))
}

// FirstDerivative returns d(position)/dt.
func (s *Segment) FirstDerivative(t float64) spatialmath.Position {
	return spatialmath.NewPosition(s.dx.eval(t), s.dy.eval(t))
}

// SecondDerivative returns d2(position)/dt2.
func (s *Segment) SecondDerivative(t float64) spatialmath.Position {
	return spatialmath.NewPosition(s.ddx.eval(t), s.ddy.eval(t))
}

// Rotation returns the heading of the curve at t.
func (s *Segment) Rotation(t float64) spatialmath.Rotation {
	return headingAt(s, t)
}

// Transform returns the pose at t.
func (s *Segment) Transform(t float64) spatialmath.Transform {
	return spatialmath.Transform{Position: s.Position(t), Rotation: s.Rotation(t)}
}

// Curvature returns the signed curvature at t.
func (s *Segment) Curvature(t float64) float64 {
	return curvatureAt(s, t)
}

// Length returns the arc length between a and b.
func (s *Segment) Length(a, b float64) float64 {
	return arcLength(s, a, b)
}

// ParameterFromLength returns the parameter at the given arc length from the segment start.
func (s *Segment) ParameterFromLength(length float64) float64 {
	return parameterFromLength(s, length)
}

func (s *Segment) String() string {
	return fmt.Sprintf("%s hermite %v -> %v", s.kind, s.Position(0), s.Position(1))
}
