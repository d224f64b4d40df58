// Package sim closes the loop between a path follower and a simulated differential drive robot.
package sim

import (
	"go.viam.com/motioncore/drivetrain"
	"go.viam.com/motioncore/motionprofile"
	"go.viam.com/motioncore/spatialmath"
)

// Robot is a differential drive robot whose pose is integrated with exact arc odometry. Wheel
// speeds follow commands through WheelLimits; a zero WheelLimits applies commands instantly.
type Robot struct {
	WheelLimits motionprofile.SafeVelocityController

	pose       spatialmath.Transform
	state      drivetrain.State
	trackWidth float64
	elapsed    float64
}

// NewRobot returns a robot at rest at start.
func NewRobot(start spatialmath.Transform, trackWidth float64) *Robot {
	return &Robot{
		pose:       start,
		state:      drivetrain.FromWheelSpeeds(0, 0, trackWidth),
		trackWidth: trackWidth,
	}
}

// Pose returns the robot's current pose.
func (r *Robot) Pose() spatialmath.Transform {
	return r.pose
}

// State returns the robot's current drive state.
func (r *Robot) State() drivetrain.State {
	return r.state
}

// Elapsed returns the simulated time in seconds.
func (r *Robot) Elapsed() float64 {
	return r.elapsed
}

// Apply drives the robot with cmd for dt seconds and returns the new pose.
func (r *Robot) Apply(cmd drivetrain.State, dt float64) spatialmath.Transform {
	left, right := cmd.Left(), cmd.Right()
	if cmd.TrackWidth() != r.trackWidth {
		rescaled := drivetrain.FromLinearAndAngular(cmd.Linear(), cmd.Angular(), r.trackWidth)
		left, right = rescaled.Left(), rescaled.Right()
	}
	if r.WheelLimits.MaxAcceleration > 0 || r.WheelLimits.MaxDeceleration > 0 {
		left = r.WheelLimits.Velocity(r.state.Left(), left, dt)
		right = r.WheelLimits.Velocity(r.state.Right(), right, dt)
	}
	r.state = drivetrain.FromWheelSpeeds(left, right, r.trackWidth)
	r.pose = r.pose.Compose(r.state.DeltaTransform(dt))
	r.elapsed += dt
	return r.pose
}
