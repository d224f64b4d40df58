// Package geometry implements the closed-form planar primitives (lines, segments, circles and
// arcs) used by path construction and by the pursuit controllers.
//
// Queries that have no answer (parallel lines, disjoint circles) report it through an ok bool or
// an empty slice rather than through NaN coordinates.
package geometry

import (
	"math"

	"go.viam.com/motioncore/spatialmath"
	"go.viam.com/motioncore/utils"
)

const parallelEpsilon = 1e-12

// Line is an infinite directed line through P1 towards P2.
type Line struct {
	P1 spatialmath.Position
	P2 spatialmath.Position
}

// NewLine returns the directed line from p1 through p2. The points must be distinct.
func NewLine(p1, p2 spatialmath.Position) Line {
	return Line{P1: p1, P2: p2}
}

// NewLineFromTransform returns the line through the pose's position along its heading.
func NewLineFromTransform(t spatialmath.Transform) Line {
	return Line{P1: t.Position, P2: t.Position.Add(t.Rotation.Unit())}
}

// Direction returns P2 - P1.
func (l Line) Direction() spatialmath.Position {
	return l.P2.Sub(l.P1)
}

// Angle returns the heading of the line's direction.
func (l Line) Angle() spatialmath.Rotation {
	return l.Direction().Angle()
}

// FindSide returns +1 if p is to the left of the directed line, -1 if it is to the right and 0 if
// it is on the line.
func (l Line) FindSide(p spatialmath.Position) float64 {
	return utils.Sign(l.Direction().Cross(p.Sub(l.P1)))
}

// Intersection returns the point where l and other cross. ok is false for parallel lines.
func (l Line) Intersection(other Line) (spatialmath.Position, bool) {
	d := l.Direction()
	od := other.Direction()
	denom := d.Cross(od)
	if math.Abs(denom) < parallelEpsilon*math.Max(1, d.Norm()*od.Norm()) {
		return spatialmath.Position{}, false
	}
	s := other.P1.Sub(l.P1).Cross(od) / denom
	return l.P1.Add(d.Scale(s)), true
}

// ClosestPoint returns the orthogonal projection of p onto the line.
func (l Line) ClosestPoint(p spatialmath.Position) spatialmath.Position {
	return l.P1.Add(l.Direction().Scale(l.project(p)))
}

// project returns the line parameter of p's projection, with P1 at 0 and P2 at 1.
func (l Line) project(p spatialmath.Position) float64 {
	d := l.Direction()
	return p.Sub(l.P1).Dot(d) / d.Dot(d)
}

// DistanceTo returns the perpendicular distance from p to the line.
func (l Line) DistanceTo(p spatialmath.Position) float64 {
	d := l.Direction()
	return math.Abs(d.Cross(p.Sub(l.P1))) / d.Norm()
}

// Parallel returns the line through p with the same direction.
func (l Line) Parallel(p spatialmath.Position) Line {
	return Line{P1: p, P2: p.Add(l.Direction())}
}

// Perpendicular returns the line through p rotated a quarter turn left of l.
func (l Line) Perpendicular(p spatialmath.Position) Line {
	return Line{P1: p, P2: p.Add(l.Direction().Ortho())}
}

// LineSegment is the bounded part of a line between Start and End.
type LineSegment struct {
	Start spatialmath.Position
	End   spatialmath.Position
}

// NewLineSegment returns the segment from start to end.
func NewLineSegment(start, end spatialmath.Position) LineSegment {
	return LineSegment{Start: start, End: end}
}

// Line returns the infinite line through the segment.
func (s LineSegment) Line() Line {
	return NewLine(s.Start, s.End)
}

// Length of the segment.
func (s LineSegment) Length() float64 {
	return s.Start.Distance(s.End)
}

// ClosestPoint returns the point on the segment nearest to p.
func (s LineSegment) ClosestPoint(p spatialmath.Position) spatialmath.Position {
	if s.Start == s.End {
		return s.Start
	}
	line := s.Line()
	return line.P1.Add(line.Direction().Scale(utils.Clamp(line.project(p), 0, 1)))
}

// Contains reports whether p lies on the segment within tolerance.
func (s LineSegment) Contains(p spatialmath.Position, tolerance float64) bool {
	return s.ClosestPoint(p).Distance(p) <= tolerance
}

// Intersection returns where line crosses the segment, if it does.
func (s LineSegment) Intersection(line Line) (spatialmath.Position, bool) {
	p, ok := s.Line().Intersection(line)
	if !ok || !s.Contains(p, 1e-9*math.Max(1, s.Length())) {
		return spatialmath.Position{}, false
	}
	return p, true
}
