package motionprofile

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// setpointCorrections bounds how many times the cruise is stretched to land on the setpoint.
const setpointCorrections = 2

// MotionProfile is a planned motion made of constant-jerk segments.
type MotionProfile struct {
	name       string
	start      MotionState
	final      MotionState
	segments   []MotionSegment
	bounds     *MechanismBounds
	overridden bool
}

var _ Profile = (*MotionProfile)(nil)

// NewTrapezoidalMotionProfile plans a motion with stepped acceleration: accelerate, cruise and
// decelerate. Jerk is ignored. bounds may be nil.
func NewTrapezoidalMotionProfile(
	start, end MotionState,
	constraints Constraints,
	override OverrideMethod,
	bounds *MechanismBounds,
) (*MotionProfile, error) {
	p := planner{constraints: constraints, jerk: math.Inf(1), peak: trapezoidPeak}
	return newMotionProfile("trapezoidal", start, end, p, override, bounds)
}

// NewSCurveMotionProfile plans a jerk-limited motion: each velocity change ramps acceleration up,
// holds it and ramps it down. bounds may be nil.
func NewSCurveMotionProfile(
	start, end MotionState,
	constraints Constraints,
	override OverrideMethod,
	bounds *MechanismBounds,
) (*MotionProfile, error) {
	if !(constraints.MaxJerk > 0) {
		return nil, errors.New("s-curve profile needs a positive max_jerk")
	}
	p := planner{constraints: constraints, jerk: constraints.MaxJerk, peak: sCurvePeak}
	return newMotionProfile("s-curve", start, end, p, override, bounds)
}

func newMotionProfile(
	name string,
	start, end MotionState,
	p planner,
	override OverrideMethod,
	bounds *MechanismBounds,
) (*MotionProfile, error) {
	if err := p.constraints.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s profile constraints", name)
	}
	if bounds != nil {
		if err := bounds.Validate(); err != nil {
			return nil, err
		}
	}

	// Motions towards a lower position are planned mirrored and flipped back.
	dir := 1.0
	if end.Position < start.Position {
		dir = -1
	}
	dist := math.Abs(end.Position - start.Position)
	vmax := p.constraints.MaxVelocity
	vs := dir * start.Velocity
	ve := math.Max(-vmax, math.Min(dir*end.Velocity, vmax))

	origin := MotionState{Position: start.Position, Velocity: start.Velocity}
	mp := &MotionProfile{name: name, start: origin, bounds: bounds}

	pl, ok := p.plan(vs, ve, dist)
	if ok {
		mp.segments = landOnSetpoint(origin, pl, dir, end.Position)
	} else {
		mp.overridden = true
		mp.segments = chainSegments(origin, scaleShapes(p.override(override, vs, ve, dist), dir))
	}

	mp.final = origin
	if n := len(mp.segments); n > 0 {
		mp.final = mp.segments[n-1].Final()
	}
	mp.final.Acceleration = 0
	return mp, nil
}

// landOnSetpoint chains the plan and stretches its cruise by the landing error, keeping whichever
// pass ends closest to the setpoint.
func landOnSetpoint(origin MotionState, pl plan, dir, setpoint float64) []MotionSegment {
	shapes := append([]segmentShape(nil), pl.shapes...)
	best := chainSegments(origin, scaleShapes(shapes, dir))
	bestErr := landingError(best, origin, setpoint)
	for i := 0; i < setpointCorrections && pl.peak > 0 && math.Abs(bestErr) > minSegmentDuration; i++ {
		shapes[pl.cruise].duration = math.Max(0, shapes[pl.cruise].duration+dir*bestErr/pl.peak)
		candidate := chainSegments(origin, scaleShapes(shapes, dir))
		candidateErr := landingError(candidate, origin, setpoint)
		if math.Abs(candidateErr) >= math.Abs(bestErr) {
			break
		}
		best, bestErr = candidate, candidateErr
	}
	return best
}

func landingError(segments []MotionSegment, origin MotionState, setpoint float64) float64 {
	if len(segments) == 0 {
		return setpoint - origin.Position
	}
	return setpoint - segments[len(segments)-1].Final().Position
}

// StateAt returns the planned state t seconds after the start. Before the start it reports the
// start state and after the end it reports the final state.
func (mp *MotionProfile) StateAt(t float64) MotionState {
	state := mp.final
	switch {
	case t <= 0:
		state = mp.start
	default:
		for _, seg := range mp.segments {
			if t < seg.EndTime() {
				state = seg.StateAt(t)
				break
			}
		}
	}
	state.Time = t
	if mp.bounds != nil {
		state = mp.bounds.apply(state)
	}
	return state
}

// Duration is the time the motion takes.
func (mp *MotionProfile) Duration() float64 {
	if len(mp.segments) == 0 {
		return 0
	}
	return mp.segments[len(mp.segments)-1].EndTime()
}

// IsFinished reports whether the motion is over at t.
func (mp *MotionProfile) IsFinished(t float64) bool {
	return t >= mp.Duration()
}

// Segments returns a copy of the planned segments.
func (mp *MotionProfile) Segments() []MotionSegment {
	return append([]MotionSegment(nil), mp.segments...)
}

// Final is the state the motion ends in.
func (mp *MotionProfile) Final() MotionState {
	return mp.final
}

// Overridden reports whether the end state was out of reach and the override method was applied.
func (mp *MotionProfile) Overridden() bool {
	return mp.overridden
}

func (mp *MotionProfile) String() string {
	return fmt.Sprintf("%s profile: %d segments over %.4fs ending %v", mp.name, len(mp.segments), mp.Duration(), mp.final)
}
