package motionprofile

import (
	"math"
)

const (
	// peakBisections bounds the S-curve peak velocity search.
	peakBisections = 60
	// scaleBisections and maxConstraintScale bound the ViolateConstraints search.
	scaleBisections    = 100
	maxConstraintScale = 1e6
)

type peakFunc func(p planner, vs, ve, dist float64) float64

// planner lays out motions in positive space: the target is dist ahead, vs and ve are measured
// along the direction of travel.
type planner struct {
	constraints Constraints
	jerk        float64
	peak        peakFunc
}

// plan is a candidate accelerate, cruise, decelerate layout.
type plan struct {
	shapes    []segmentShape
	cruise    int
	peak      float64
	remaining float64
}

func (p planner) change(v0, v1, scale float64) ([]segmentShape, float64, float64) {
	return velocityChange(v0, v1,
		p.constraints.MaxAcceleration*scale,
		p.constraints.MaxDeceleration*scale,
		p.jerk*scale*scale)
}

// threePhase builds vs -> peak -> cruise -> ve. remaining is the distance left for the cruise and
// goes negative when the two velocity changes alone overrun dist.
func (p planner) threePhase(vs, peak, ve, dist float64) plan {
	up, _, dUp := p.change(vs, peak, 1)
	down, _, dDown := p.change(peak, ve, 1)
	remaining := dist - dUp - dDown

	var cruise float64
	if remaining > 0 && peak > 0 {
		cruise = remaining / peak
	}
	shapes := make([]segmentShape, 0, len(up)+len(down)+1)
	shapes = append(shapes, up...)
	shapes = append(shapes, segmentShape{duration: cruise})
	shapes = append(shapes, down...)
	return plan{shapes: shapes, cruise: len(up), peak: peak, remaining: remaining}
}

func feasibilityTolerance(dist float64) float64 {
	return 1e-9 * math.Max(1, dist)
}

// plan returns the layout for the motion and whether it reaches the end state within the limits.
func (p planner) plan(vs, ve, dist float64) (plan, bool) {
	pl := p.threePhase(vs, p.peak(p, vs, ve, dist), ve, dist)
	return pl, pl.remaining >= -feasibilityTolerance(dist)
}

// trapezoidPeak is the closed-form peak velocity with acceleration steps. The motion is extended
// at both ends to a virtual start and stop at rest, giving a triangle whose acceleration share of
// the distance is total*decel/(accel+decel). When a boundary velocity is already at or above the
// triangle's apex, that boundary's ramp collapses and the peak is the boundary velocity.
func trapezoidPeak(p planner, vs, ve, dist float64) float64 {
	a, d, vmax := p.constraints.MaxAcceleration, p.constraints.MaxDeceleration, p.constraints.MaxVelocity
	total := vs*vs/(2*a) + dist + ve*ve/(2*d)
	triangleAccel := math.Max(0, total*d/(a+d))
	theoretical := math.Sqrt(2 * a * triangleAccel)
	if vs >= theoretical || ve >= theoretical {
		return math.Min(math.Max(vs, ve), vmax)
	}
	return math.Min(theoretical, vmax)
}

// sCurvePeak cruises at the velocity limit when that leaves a non-negative cruise, and otherwise
// bisects for the highest peak whose ramps still fit in dist.
func sCurvePeak(p planner, vs, ve, dist float64) float64 {
	vmax := p.constraints.MaxVelocity
	tol := feasibilityTolerance(dist)
	lo := math.Max(0, math.Min(math.Max(vs, ve), vmax))
	hi := vmax
	if p.threePhase(vs, hi, ve, dist).remaining >= -tol {
		return hi
	}
	if p.threePhase(vs, lo, ve, dist).remaining < -tol {
		return lo
	}
	for i := 0; i < peakBisections; i++ {
		mid := (lo + hi) / 2
		if p.threePhase(vs, mid, ve, dist).remaining >= 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// override lays out a motion whose end state is out of reach.
func (p planner) override(method OverrideMethod, vs, ve, dist float64) []segmentShape {
	switch method {
	case ViolateConstraints:
		return p.violate(vs, ve, dist)
	case Overshoot:
		// Only a motion that cannot brake in time can come back; one that cannot accelerate in
		// time ends past the setpoint either way.
		if vs > ve {
			return p.overshoot(vs, dist)
		}
	case EndAfterSetpoint:
	}
	shapes, _, _ := p.change(vs, ve, 1)
	return shapes
}

// violate finds the smallest scale k on acceleration (k^2 on jerk) that lets the velocity change
// fit in dist, then holds the end velocity for whatever distance is left.
func (p planner) violate(vs, ve, dist float64) []segmentShape {
	distanceAt := func(k float64) float64 {
		_, _, d := p.change(vs, ve, k)
		return d
	}
	lo, hi := 1.0, maxConstraintScale
	for i := 0; i < scaleBisections; i++ {
		mid := (lo + hi) / 2
		if distanceAt(mid) > dist {
			lo = mid
		} else {
			hi = mid
		}
	}
	shapes, _, covered := p.change(vs, ve, hi)
	if left := dist - covered; left > 0 && ve > 0 {
		shapes = append(shapes, segmentShape{duration: left / ve})
	}
	return shapes
}

// overshoot brakes to rest past the setpoint and returns to it, arriving at rest.
func (p planner) overshoot(vs, dist float64) []segmentShape {
	brake, _, braking := p.change(vs, 0, 1)
	back, _ := p.plan(0, 0, braking-dist)
	return append(brake, scaleShapes(back.shapes, -1)...)
}
