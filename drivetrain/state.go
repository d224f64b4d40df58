// Package drivetrain holds the differential-drive velocity bundle handed between the followers
// and the actuator layer, along with the kinematics that keep its fields consistent.
package drivetrain

import (
	"fmt"
	"math"

	"go.viam.com/motioncore/spatialmath"
	"go.viam.com/motioncore/utils"
)

// StraightSentinel is the radius and curvature used in place of infinity.
const StraightSentinel = utils.LargeSentinel

// radiusEpsilon is the smallest turning radius that is not treated as degenerate.
const radiusEpsilon = 1e-9

// State is a body and wheel velocity command for a differential drive. Any two of linear, angular
// and curvature determine the rest, so a State can only be built through the From* constructors,
// which keep left and right consistent with linear and angular under the stored track width.
type State struct {
	linear     float64
	angular    float64
	left       float64
	right      float64
	curvature  float64
	trackWidth float64
}

// Empty returns the zero command.
func Empty() State {
	return State{}
}

// FromLinearAndRadius drives along a circle of the given signed radius, positive to the left. A
// zero or sentinel radius is treated as driving straight.
func FromLinearAndRadius(linear, radius, trackWidth float64) State {
	if math.Abs(radius) < radiusEpsilon || math.Abs(radius) >= StraightSentinel || !utils.IsFinite(radius) {
		return State{linear: linear, left: linear, right: linear, trackWidth: trackWidth}
	}
	angular := linear / radius
	return State{
		linear:     linear,
		angular:    angular,
		left:       angular * (radius - trackWidth/2),
		right:      angular * (radius + trackWidth/2),
		curvature:  1 / radius,
		trackWidth: trackWidth,
	}
}

// FromLinearAndAngular returns the command for the given body velocities.
func FromLinearAndAngular(linear, angular, trackWidth float64) State {
	return State{
		linear:     linear,
		angular:    angular,
		left:       linear - angular*trackWidth/2,
		right:      linear + angular*trackWidth/2,
		curvature:  curvatureOf(linear, angular),
		trackWidth: trackWidth,
	}
}

// FromLinearAndCurvature returns the command that drives at linear along a path of the given
// curvature.
func FromLinearAndCurvature(linear, curvature, trackWidth float64) State {
	s := FromLinearAndAngular(linear, linear*curvature, trackWidth)
	s.curvature = clampSentinel(curvature)
	return s
}

// FromWheelSpeeds returns the command for measured or desired wheel velocities. With a zero track
// width the angular velocity cannot be recovered and is reported as zero.
func FromWheelSpeeds(left, right, trackWidth float64) State {
	var angular float64
	if trackWidth != 0 {
		angular = (right - left) / trackWidth
	}
	linear := (left + right) / 2
	return State{
		linear:     linear,
		angular:    angular,
		left:       left,
		right:      right,
		curvature:  curvatureOf(linear, angular),
		trackWidth: trackWidth,
	}
}

func curvatureOf(linear, angular float64) float64 {
	if linear == 0 {
		if angular == 0 {
			return 0
		}
		return math.Copysign(StraightSentinel, angular)
	}
	return clampSentinel(angular / linear)
}

func clampSentinel(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return utils.Clamp(v, -StraightSentinel, StraightSentinel)
}

// Linear velocity of the body center.
func (s State) Linear() float64 { return s.linear }

// Angular velocity of the body, positive counterclockwise.
func (s State) Angular() float64 { return s.angular }

// Left wheel velocity.
func (s State) Left() float64 { return s.left }

// Right wheel velocity.
func (s State) Right() float64 { return s.right }

// Curvature of the commanded arc.
func (s State) Curvature() float64 { return s.curvature }

// TrackWidth the command was built for.
func (s State) TrackWidth() float64 { return s.trackWidth }

// Radius returns the signed turning radius, StraightSentinel when driving straight.
func (s State) Radius() float64 {
	if s.curvature == 0 {
		return StraightSentinel
	}
	return clampSentinel(1 / s.curvature)
}

// IsEmpty reports whether the command is a full stop.
func (s State) IsEmpty() bool {
	return s.left == 0 && s.right == 0
}

// Reverse returns the command for driving the same arc backwards. The heading rate is unchanged,
// so the wheels swap and change sign.
func (s State) Reverse() State {
	return FromLinearAndAngular(-s.linear, s.angular, s.trackWidth)
}

// DeltaTransform returns the body-frame pose change produced by holding this command for dt.
func (s State) DeltaTransform(dt float64) spatialmath.Transform {
	dtheta := s.angular * dt
	if math.Abs(dtheta) < 1e-9 {
		return spatialmath.Transform{Position: spatialmath.NewPosition(s.linear*dt, 0)}
	}
	r := s.linear / s.angular
	return spatialmath.Transform{
		Position: spatialmath.NewPosition(r*math.Sin(dtheta), r*(1-math.Cos(dtheta))),
		Rotation: spatialmath.NewRotationFromRadians(dtheta),
	}
}

// WheelRPM converts the wheel velocities to motor revolutions per minute for wheels of the given
// circumference, in the same length unit as the velocities.
func (s State) WheelRPM(wheelCircumference float64) (float64, float64) {
	if wheelCircumference <= 0 {
		return 0, 0
	}
	// RPM = (distance/s) / (distance/rev) * (60 s / 1 min)
	return s.left / wheelCircumference * 60, s.right / wheelCircumference * 60
}

func (s State) String() string {
	return fmt.Sprintf("linear: %.4f angular: %.4f left: %.4f right: %.4f curvature: %.4g", s.linear, s.angular, s.left, s.right, s.curvature)
}
