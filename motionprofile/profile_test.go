package motionprofile

import (
	"math"
	"testing"

	"go.viam.com/test"
)

var testConstraints = Constraints{MaxAcceleration: 2, MaxDeceleration: 2, MaxVelocity: 4, MaxJerk: 4}

// sweep samples a profile and checks that velocity and acceleration stay within the limits and
// that position never jumps.
func sweep(t *testing.T, p Profile, c Constraints, velocitySlack, accelSlack float64) {
	t.Helper()
	const steps = 400
	dt := p.Duration() / steps
	prev := p.StateAt(0)
	for i := 1; i <= steps; i++ {
		s := p.StateAt(float64(i) * dt)
		test.That(t, math.Abs(s.Velocity), test.ShouldBeLessThanOrEqualTo, c.MaxVelocity*velocitySlack+1e-9)
		limit := math.Max(c.MaxAcceleration, c.MaxDeceleration) * accelSlack
		test.That(t, math.Abs(s.Acceleration), test.ShouldBeLessThanOrEqualTo, limit+1e-9)
		test.That(t, math.Abs(s.Position-prev.Position), test.ShouldBeLessThanOrEqualTo, c.MaxVelocity*velocitySlack*dt+1e-9)
		prev = s
	}
}

func TestTrapezoidalProfile(t *testing.T) {
	p, err := NewTrapezoidalMotionProfile(MotionState{}, MotionState{Position: 10}, testConstraints, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Overridden(), test.ShouldBeFalse)
	test.That(t, p.Duration(), test.ShouldAlmostEqual, 4.5, 1e-9)
	test.That(t, len(p.Segments()), test.ShouldEqual, 3)

	test.That(t, p.StateAt(1).Velocity, test.ShouldAlmostEqual, 2)
	test.That(t, p.StateAt(1).Acceleration, test.ShouldAlmostEqual, 2)
	test.That(t, p.StateAt(2.25).Velocity, test.ShouldAlmostEqual, 4)
	test.That(t, p.StateAt(2.25).Position, test.ShouldAlmostEqual, 5)
	test.That(t, p.StateAt(3.5).Velocity, test.ShouldAlmostEqual, 2)

	end := p.StateAt(p.Duration())
	test.That(t, end.Position, test.ShouldAlmostEqual, 10, 1e-9)
	test.That(t, end.Velocity, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, p.StateAt(-1).Position, test.ShouldEqual, 0.0)
	test.That(t, p.StateAt(100).Position, test.ShouldAlmostEqual, 10, 1e-9)
	test.That(t, p.StateAt(100).Acceleration, test.ShouldEqual, 0.0)
	test.That(t, p.IsFinished(4), test.ShouldBeFalse)
	test.That(t, p.IsFinished(4.5), test.ShouldBeTrue)
	sweep(t, p, testConstraints, 1, 1)
}

func TestTrapezoidalTriangle(t *testing.T) {
	p, err := NewTrapezoidalMotionProfile(MotionState{}, MotionState{Position: 4}, testConstraints, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldBeNil)
	// Peak velocity sqrt(2*2*2) = 2.83 never reaches the limit.
	test.That(t, p.Duration(), test.ShouldAlmostEqual, 2*math.Sqrt(2), 1e-9)
	test.That(t, p.StateAt(math.Sqrt(2)).Velocity, test.ShouldAlmostEqual, 2*math.Sqrt(2), 1e-9)
	test.That(t, p.Final().Position, test.ShouldAlmostEqual, 4, 1e-9)
}

func TestTrapezoidalBoundaryVelocities(t *testing.T) {
	p, err := NewTrapezoidalMotionProfile(
		MotionState{Velocity: 1}, MotionState{Position: 20, Velocity: 2}, testConstraints, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.StateAt(0).Velocity, test.ShouldEqual, 1.0)
	test.That(t, p.Final().Velocity, test.ShouldAlmostEqual, 2, 1e-9)
	test.That(t, p.Final().Position, test.ShouldAlmostEqual, 20, 1e-9)
	sweep(t, p, testConstraints, 1, 1)

	// Starting above the velocity limit decelerates to it first.
	fast, err := NewTrapezoidalMotionProfile(
		MotionState{Velocity: 5}, MotionState{Position: 30}, testConstraints, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fast.Segments()[0].InitialAcceleration, test.ShouldEqual, -2.0)
	test.That(t, fast.StateAt(0.5).Velocity, test.ShouldAlmostEqual, 4, 1e-9)
	test.That(t, fast.Final().Position, test.ShouldAlmostEqual, 30, 1e-9)

	// Velocity is continuous across every segment boundary.
	segments := p.Segments()
	for i := 1; i < len(segments); i++ {
		test.That(t, segments[i].InitialVelocity, test.ShouldAlmostEqual, segments[i-1].Final().Velocity, 1e-9)
		test.That(t, segments[i].StartTime, test.ShouldAlmostEqual, segments[i-1].EndTime(), 1e-12)
	}
}

func TestReversedProfile(t *testing.T) {
	p, err := NewTrapezoidalMotionProfile(MotionState{Position: 10}, MotionState{}, testConstraints, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Duration(), test.ShouldAlmostEqual, 4.5, 1e-9)
	test.That(t, p.StateAt(2.25).Velocity, test.ShouldAlmostEqual, -4)
	test.That(t, p.StateAt(1).Acceleration, test.ShouldAlmostEqual, -2)
	test.That(t, p.Final().Position, test.ShouldAlmostEqual, 0, 1e-9)
	for i := 0; i <= 45; i++ {
		test.That(t, p.StateAt(float64(i)/10).Velocity, test.ShouldBeLessThanOrEqualTo, 1e-12)
	}

	s, err := NewSCurveMotionProfile(MotionState{Position: 3}, MotionState{Position: -9}, testConstraints, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Final().Position, test.ShouldAlmostEqual, -9, 1e-9)
	test.That(t, s.StateAt(s.Duration()/2).Velocity, test.ShouldBeLessThan, 0)
}

func TestSCurveProfile(t *testing.T) {
	p, err := NewSCurveMotionProfile(MotionState{}, MotionState{Position: 12}, testConstraints, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Overridden(), test.ShouldBeFalse)
	// 2.5s to reach 4 covering 5, a 0.5s cruise for the remaining 2, and 2.5s back down.
	test.That(t, p.Duration(), test.ShouldAlmostEqual, 5.5, 1e-9)
	test.That(t, len(p.Segments()), test.ShouldEqual, 7)
	test.That(t, p.StateAt(0.5).Acceleration, test.ShouldAlmostEqual, 2, 1e-9)
	test.That(t, p.StateAt(2.75).Velocity, test.ShouldAlmostEqual, 4, 1e-9)
	test.That(t, p.Final().Position, test.ShouldAlmostEqual, 12, 1e-9)
	test.That(t, p.Final().Velocity, test.ShouldAlmostEqual, 0, 1e-9)
	sweep(t, p, testConstraints, 1, 1)

	// Acceleration has no steps.
	for _, seg := range p.Segments()[1:] {
		prev := p.StateAt(seg.StartTime - 1e-9)
		test.That(t, seg.InitialAcceleration, test.ShouldAlmostEqual, prev.Acceleration, 1e-6)
	}
}

func TestSCurveShortMove(t *testing.T) {
	p, err := NewSCurveMotionProfile(MotionState{}, MotionState{Position: 1}, testConstraints, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Overridden(), test.ShouldBeFalse)
	test.That(t, p.Final().Position, test.ShouldAlmostEqual, 1, 1e-6)
	sweep(t, p, testConstraints, 1, 1)

	peak := 0.0
	for i := 0; i <= 100; i++ {
		peak = math.Max(peak, p.StateAt(p.Duration()*float64(i)/100).Velocity)
	}
	test.That(t, peak, test.ShouldBeLessThan, 4)

	_, err = NewSCurveMotionProfile(MotionState{}, MotionState{Position: 1},
		Constraints{MaxAcceleration: 1, MaxDeceleration: 1, MaxVelocity: 1}, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOverrideMethods(t *testing.T) {
	start := MotionState{Velocity: 4}
	end := MotionState{Position: 2}

	t.Run("end after setpoint", func(t *testing.T) {
		p, err := NewTrapezoidalMotionProfile(start, end, testConstraints, EndAfterSetpoint, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Overridden(), test.ShouldBeTrue)
		test.That(t, p.Duration(), test.ShouldAlmostEqual, 2, 1e-9)
		test.That(t, p.Final().Position, test.ShouldAlmostEqual, 4, 1e-9)
		test.That(t, p.Final().Velocity, test.ShouldAlmostEqual, 0, 1e-9)
		sweep(t, p, testConstraints, 1, 1)
	})

	t.Run("violate constraints", func(t *testing.T) {
		p, err := NewTrapezoidalMotionProfile(start, end, testConstraints, ViolateConstraints, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Overridden(), test.ShouldBeTrue)
		test.That(t, p.Duration(), test.ShouldAlmostEqual, 1, 1e-6)
		test.That(t, p.Final().Position, test.ShouldAlmostEqual, 2, 1e-6)
		test.That(t, p.StateAt(0.5).Acceleration, test.ShouldAlmostEqual, -4, 1e-6)
	})

	t.Run("overshoot", func(t *testing.T) {
		p, err := NewTrapezoidalMotionProfile(start, end, testConstraints, Overshoot, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Overridden(), test.ShouldBeTrue)
		test.That(t, p.StateAt(2).Position, test.ShouldAlmostEqual, 4, 1e-9)
		test.That(t, p.Duration(), test.ShouldAlmostEqual, 4, 1e-9)
		test.That(t, p.Final().Position, test.ShouldAlmostEqual, 2, 1e-9)
		test.That(t, p.Final().Velocity, test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, p.StateAt(3).Velocity, test.ShouldBeLessThan, 0)
		sweep(t, p, testConstraints, 1, 1)
	})

	t.Run("s-curve overshoot", func(t *testing.T) {
		p, err := NewSCurveMotionProfile(start, end, testConstraints, Overshoot, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Overridden(), test.ShouldBeTrue)
		test.That(t, p.Final().Position, test.ShouldAlmostEqual, 2, 1e-6)
		test.That(t, p.Final().Velocity, test.ShouldAlmostEqual, 0, 1e-9)
		sweep(t, p, testConstraints, 1, 1)
	})

	t.Run("cannot accelerate in time", func(t *testing.T) {
		target := MotionState{Position: 1, Velocity: 4}
		p, err := NewTrapezoidalMotionProfile(MotionState{}, target, testConstraints, Overshoot, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Overridden(), test.ShouldBeTrue)
		test.That(t, p.Final().Velocity, test.ShouldAlmostEqual, 4, 1e-9)
		test.That(t, p.Final().Position, test.ShouldAlmostEqual, 4, 1e-9)

		v, err := NewTrapezoidalMotionProfile(MotionState{}, target, testConstraints, ViolateConstraints, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v.Duration(), test.ShouldAlmostEqual, 0.5, 1e-6)
		test.That(t, v.Final().Position, test.ShouldAlmostEqual, 1, 1e-6)
	})
}

func TestMechanismBounds(t *testing.T) {
	bounds := &MechanismBounds{Min: -1, Max: 6}
	p, err := NewTrapezoidalMotionProfile(MotionState{}, MotionState{Position: 10}, testConstraints, EndAfterSetpoint, bounds)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.StateAt(1).Position, test.ShouldAlmostEqual, 1)
	clamped := p.StateAt(4)
	test.That(t, clamped.Position, test.ShouldEqual, 6.0)
	test.That(t, clamped.Velocity, test.ShouldEqual, 0.0)

	_, err = NewTrapezoidalMotionProfile(MotionState{}, MotionState{Position: 1}, testConstraints, EndAfterSetpoint,
		&MechanismBounds{Min: 2, Max: 1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestZeroLengthProfile(t *testing.T) {
	p, err := NewTrapezoidalMotionProfile(MotionState{Position: 3}, MotionState{Position: 3}, testConstraints, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Duration(), test.ShouldEqual, 0.0)
	test.That(t, p.IsFinished(0), test.ShouldBeTrue)
	test.That(t, p.StateAt(1).Position, test.ShouldEqual, 3.0)
}

func TestConstraintsValidate(t *testing.T) {
	test.That(t, testConstraints.Validate(), test.ShouldBeNil)
	err := Constraints{MaxAcceleration: -1, MaxVelocity: math.Inf(1), MaxJerk: -2}.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_acceleration")
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_deceleration")
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_velocity")
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_jerk")

	_, err = NewTrapezoidalMotionProfile(MotionState{}, MotionState{Position: 1}, Constraints{}, EndAfterSetpoint, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOverrideMethodText(t *testing.T) {
	for _, m := range []OverrideMethod{EndAfterSetpoint, Overshoot, ViolateConstraints} {
		text, err := m.MarshalText()
		test.That(t, err, test.ShouldBeNil)
		var parsed OverrideMethod
		test.That(t, parsed.UnmarshalText(text), test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, m)
	}
	m, err := ParseOverrideMethod("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m, test.ShouldEqual, EndAfterSetpoint)
	_, err = ParseOverrideMethod("teleport")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, OverrideMethod(9).String(), test.ShouldEqual, "OverrideMethod(9)")
}

func TestSafeVelocityController(t *testing.T) {
	c := SafeVelocityController{MaxAcceleration: 2, MaxDeceleration: 4}
	test.That(t, c.Velocity(0, 10, 0.5), test.ShouldAlmostEqual, 1)
	test.That(t, c.Velocity(9.5, 10, 0.5), test.ShouldAlmostEqual, 10)
	test.That(t, c.Velocity(10, 0, 0.5), test.ShouldAlmostEqual, 8)
	test.That(t, c.Velocity(1, 0, 0.5), test.ShouldAlmostEqual, 0)
	test.That(t, c.Velocity(3, 3, 0.5), test.ShouldAlmostEqual, 3)
}
