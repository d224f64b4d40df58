package geometry

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/motioncore/spatialmath"
)

// ArcSegment is the part of a circle swept from Start to End passing through an interior point.
type ArcSegment struct {
	Circle Circle
	Start  spatialmath.Position
	End    spatialmath.Position
	// sweep is the signed angle from Start to End, positive counterclockwise.
	sweep float64
}

// NewArcSegment returns the arc from start through mid to end.
func NewArcSegment(start, mid, end spatialmath.Position) (ArcSegment, error) {
	circle, ok := NewCircleFromPoints(start, mid, end)
	if !ok {
		return ArcSegment{}, errors.Errorf("arc points %v, %v, %v are collinear", start, mid, end)
	}
	startAngle := angleAround(circle.Center, start)
	ccwSweep := positiveAngle(angleAround(circle.Center, end) - startAngle)
	ccwMid := positiveAngle(angleAround(circle.Center, mid) - startAngle)

	sweep := ccwSweep
	if ccwMid > ccwSweep {
		sweep = ccwSweep - 2*math.Pi
	}
	return ArcSegment{Circle: circle, Start: start, End: end, sweep: sweep}, nil
}

// SweepAngle returns the signed angle in radians covered by the arc, positive counterclockwise.
func (a ArcSegment) SweepAngle() float64 {
	return a.sweep
}

// Length returns the arc length.
func (a ArcSegment) Length() float64 {
	return math.Abs(a.sweep) * a.Circle.Radius
}

// Contains reports whether p is on the arc within tolerance.
func (a ArcSegment) Contains(p spatialmath.Position, tolerance float64) bool {
	if !a.Circle.Contains(p, tolerance) {
		return false
	}
	return a.withinSweep(p) || p.Distance(a.Start) <= tolerance || p.Distance(a.End) <= tolerance
}

// ClosestPoint returns the point of the arc nearest to p.
func (a ArcSegment) ClosestPoint(p spatialmath.Position) spatialmath.Position {
	onCircle := a.Circle.ClosestPoint(p)
	if a.withinSweep(onCircle) {
		return onCircle
	}
	if p.Distance(a.Start) <= p.Distance(a.End) {
		return a.Start
	}
	return a.End
}

func (a ArcSegment) withinSweep(p spatialmath.Position) bool {
	offset := angleAround(a.Circle.Center, p) - angleAround(a.Circle.Center, a.Start)
	if a.sweep >= 0 {
		return positiveAngle(offset) <= a.sweep
	}
	return positiveAngle(-offset) <= -a.sweep
}

func angleAround(center, p spatialmath.Position) float64 {
	d := p.Sub(center)
	return math.Atan2(d.Y, d.X)
}

// positiveAngle maps theta into [0, 2pi).
func positiveAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}
