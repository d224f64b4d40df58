package motionprofile

import (
	"math"
)

// MotionSegment is one constant-jerk piece of a profile. Its initial conditions are the final
// state of the segment before it.
type MotionSegment struct {
	StartTime           float64 `json:"start_time"`
	Duration            float64 `json:"duration"`
	InitialPosition     float64 `json:"initial_position"`
	InitialVelocity     float64 `json:"initial_velocity"`
	InitialAcceleration float64 `json:"initial_acceleration"`
	Jerk                float64 `json:"jerk"`
}

// EndTime is the time the segment hands over to the next one.
func (s MotionSegment) EndTime() float64 {
	return s.StartTime + s.Duration
}

// StateAt evaluates the segment at absolute time t, clamped to the segment window.
func (s MotionSegment) StateAt(t float64) MotionState {
	tau := math.Max(0, math.Min(t-s.StartTime, s.Duration))
	tau2 := tau * tau
	return MotionState{
		Position:     s.InitialPosition + s.InitialVelocity*tau + s.InitialAcceleration*tau2/2 + s.Jerk*tau2*tau/6,
		Velocity:     s.InitialVelocity + s.InitialAcceleration*tau + s.Jerk*tau2/2,
		Acceleration: s.InitialAcceleration + s.Jerk*tau,
		Time:         s.StartTime + tau,
	}
}

// Final is the state at the end of the segment.
func (s MotionSegment) Final() MotionState {
	return s.StateAt(s.EndTime())
}

// segmentShape is a segment before it is placed in time: how long it lasts, its jerk and the
// acceleration it starts with.
type segmentShape struct {
	duration     float64
	jerk         float64
	acceleration float64
}

func (s segmentShape) negated() segmentShape {
	return segmentShape{duration: s.duration, jerk: -s.jerk, acceleration: -s.acceleration}
}

func scaleShapes(shapes []segmentShape, dir float64) []segmentShape {
	scaled := make([]segmentShape, 0, len(shapes))
	for _, s := range shapes {
		if dir < 0 {
			s = s.negated()
		}
		scaled = append(scaled, s)
	}
	return scaled
}

// minSegmentDuration drops the slivers left over by floating point cancellation.
const minSegmentDuration = 1e-12

// chainSegments places shapes back to back starting from start. Each segment's position and
// velocity come from the final state of the previous one; its acceleration comes from the shape,
// which allows the acceleration steps of a trapezoid.
func chainSegments(start MotionState, shapes []segmentShape) []MotionSegment {
	segments := make([]MotionSegment, 0, len(shapes))
	t, pos, vel := start.Time, start.Position, start.Velocity
	for _, shape := range shapes {
		if !(shape.duration > minSegmentDuration) {
			continue
		}
		seg := MotionSegment{
			StartTime:           t,
			Duration:            shape.duration,
			InitialPosition:     pos,
			InitialVelocity:     vel,
			InitialAcceleration: shape.acceleration,
			Jerk:                shape.jerk,
		}
		segments = append(segments, seg)
		final := seg.Final()
		t, pos, vel = final.Time, final.Position, final.Velocity
	}
	return segments
}

// velocityChange returns the shapes that take v0 to v1 as fast as the limits allow, with their
// total duration and the distance covered. A jerk of zero or infinity means the acceleration can
// step, giving a single constant-acceleration segment. Otherwise acceleration ramps up at the jerk
// limit, holds, and ramps down; when the change is too small to reach the acceleration limit the
// hold disappears and the ramps peak early.
func velocityChange(v0, v1, accel, decel, jerk float64) ([]segmentShape, float64, float64) {
	dv := v1 - v0
	if dv == 0 {
		return nil, 0, 0
	}
	sign := 1.0
	limit := accel
	if dv < 0 {
		sign = -1
		limit = decel
	}
	mag := math.Abs(dv)

	var shapes []segmentShape
	var duration float64
	if jerk <= 0 || math.IsInf(jerk, 1) {
		duration = mag / limit
		shapes = []segmentShape{{duration: duration, acceleration: sign * limit}}
	} else {
		var rampTime, holdTime, peak float64
		if mag >= limit*limit/jerk {
			rampTime = limit / jerk
			holdTime = mag/limit - rampTime
			peak = limit
		} else {
			rampTime = math.Sqrt(mag / jerk)
			peak = jerk * rampTime
		}
		duration = 2*rampTime + holdTime
		shapes = []segmentShape{
			{duration: rampTime, jerk: sign * jerk},
			{duration: holdTime, acceleration: sign * peak},
			{duration: rampTime, jerk: -sign * jerk, acceleration: sign * peak},
		}
	}
	// The acceleration shape is symmetric, so the mean velocity is the midpoint.
	return shapes, duration, (v0 + v1) / 2 * duration
}
