package geometry

import (
	"math"

	"go.viam.com/motioncore/spatialmath"
	"go.viam.com/motioncore/utils"
)

// tangencyEpsilon is the relative discriminant below which two curves are considered to touch at a
// single point.
const tangencyEpsilon = 1e-10

// Circle is a circle with a non-negative radius.
type Circle struct {
	Center spatialmath.Position
	Radius float64
}

// NewCircle returns the circle of the given center and radius.
func NewCircle(center spatialmath.Position, radius float64) Circle {
	return Circle{Center: center, Radius: math.Abs(radius)}
}

// NewCircleFromPoints returns the circle through three points. ok is false if they are collinear.
func NewCircleFromPoints(a, b, c spatialmath.Position) (Circle, bool) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	d := 2 * ab.Cross(ac)
	if math.Abs(d) < parallelEpsilon*math.Max(1, ab.Norm()*ac.Norm()) {
		return Circle{}, false
	}
	abSq := ab.Dot(ab)
	acSq := ac.Dot(ac)
	offset := spatialmath.NewPosition(
		(ac.Y*abSq-ab.Y*acSq)/d,
		(ab.X*acSq-ac.X*abSq)/d,
	)
	return Circle{Center: a.Add(offset), Radius: offset.Norm()}, true
}

// NewTangentIntersectionCircle returns the circle tangent to the heading of tangent at its
// position that also passes through p. When p lies on the heading line there is no such circle,
// and a circle of radius utils.LargeSentinel to the left of the pose stands in for the straight
// line.
func NewTangentIntersectionCircle(tangent spatialmath.Transform, p spatialmath.Position) Circle {
	normal := tangent.Rotation.Unit().Ortho()
	d := p.Sub(tangent.Position)
	signedRadius := d.Dot(d) / (2 * d.Dot(normal))
	if !utils.IsFinite(signedRadius) || math.Abs(signedRadius) > utils.LargeSentinel {
		signedRadius = utils.LargeSentinel
	}
	return Circle{
		Center: tangent.Position.Add(normal.Scale(signedRadius)),
		Radius: math.Abs(signedRadius),
	}
}

// NewTangentCircle returns the circle of the given radius tangent to the pose, on its left side
// when left is true and on its right side otherwise.
func NewTangentCircle(tangent spatialmath.Transform, radius float64, left bool) Circle {
	normal := tangent.Rotation.Unit().Ortho()
	if !left {
		normal = normal.Scale(-1)
	}
	radius = math.Abs(radius)
	return Circle{Center: tangent.Position.Add(normal.Scale(radius)), Radius: radius}
}

// Curvature returns 1/radius.
func (c Circle) Curvature() float64 {
	if c.Radius == 0 {
		return utils.LargeSentinel
	}
	return 1 / c.Radius
}

// Contains reports whether p lies on the circle within tolerance.
func (c Circle) Contains(p spatialmath.Position, tolerance float64) bool {
	return math.Abs(p.Distance(c.Center)-c.Radius) <= tolerance
}

// ClosestPoint returns the point on the circle nearest to p. For p at the center every point is
// equally close and the point at angle zero is returned.
func (c Circle) ClosestPoint(p spatialmath.Position) spatialmath.Position {
	d := p.Sub(c.Center)
	if d.Norm() == 0 {
		return c.Center.Add(spatialmath.NewPosition(c.Radius, 0))
	}
	return c.Center.Add(d.Normalize().Scale(c.Radius))
}

// TangentLineAt returns the line tangent to the circle at the point of the circle closest to p,
// directed counterclockwise.
func (c Circle) TangentLineAt(p spatialmath.Position) Line {
	onCircle := c.ClosestPoint(p)
	return NewLine(onCircle, onCircle.Add(onCircle.Sub(c.Center).Ortho()))
}

// LineIntersections returns the points where line meets the circle: none, one when the line is
// tangent, or two ordered along the line's direction.
func (c Circle) LineIntersections(line Line) []spatialmath.Position {
	d := line.Direction()
	f := line.P1.Sub(c.Center)
	a := d.Dot(d)
	b := 2 * f.Dot(d)
	cc := f.Dot(f) - c.Radius*c.Radius
	disc := b*b - 4*a*cc
	scale := math.Max(1, math.Max(b*b, math.Abs(4*a*cc)))
	switch {
	case !utils.IsFinite(disc) || a == 0:
		return nil
	case disc < -tangencyEpsilon*scale:
		return nil
	case disc <= tangencyEpsilon*scale:
		return []spatialmath.Position{line.P1.Add(d.Scale(-b / (2 * a)))}
	}
	root := math.Sqrt(disc)
	s1 := (-b - root) / (2 * a)
	s2 := (-b + root) / (2 * a)
	return []spatialmath.Position{line.P1.Add(d.Scale(s1)), line.P1.Add(d.Scale(s2))}
}

// CircleIntersections returns the points where two circles meet: none, one when they touch, or
// two. Concentric circles report none, even when identical.
func (c Circle) CircleIntersections(other Circle) []spatialmath.Position {
	between := other.Center.Sub(c.Center)
	dist := between.Norm()
	if dist == 0 {
		return nil
	}
	tol := tangencyEpsilon * math.Max(1, c.Radius+other.Radius)
	if dist > c.Radius+other.Radius+tol || dist < math.Abs(c.Radius-other.Radius)-tol {
		return nil
	}
	along := (c.Radius*c.Radius - other.Radius*other.Radius + dist*dist) / (2 * dist)
	hSq := c.Radius*c.Radius - along*along
	base := c.Center.Add(between.Scale(along / dist))
	if hSq <= tol*math.Max(1, c.Radius) {
		return []spatialmath.Position{base}
	}
	offset := between.Ortho().Scale(math.Sqrt(hSq) / dist)
	return []spatialmath.Position{base.Add(offset), base.Sub(offset)}
}
