package follower

import (
	"go.viam.com/motioncore/drivetrain"
	"go.viam.com/motioncore/geometry"
	"go.viam.com/motioncore/spatialmath"
)

// headingRayLength is the length of the forward ray used for the turn side test.
const headingRayLength = 5

// PurePursuit steers along the circle that is tangent to the robot's heading and passes through a
// lookahead point on the path.
type PurePursuit struct {
	cfg      PurePursuitConfig
	velocity *PathVelocityController
	previous float64
}

// NewPurePursuit returns a pure pursuit strategy.
func NewPurePursuit(velocity VelocityConfig, cfg PurePursuitConfig) *PurePursuit {
	return &PurePursuit{
		cfg:      cfg,
		velocity: NewPathVelocityController(velocity, cfg.CurvatureSlowdownGain, cfg.MinSlowdownVelocity),
	}
}

// Reset implements Strategy.
func (pp *PurePursuit) Reset() {
	pp.previous = 0
	pp.velocity.Reset()
}

// Calculate implements Strategy.
func (pp *PurePursuit) Calculate(tracker Tracker, pose spatialmath.Transform, _ drivetrain.State, dt float64) drivetrain.State {
	p := tracker.Path()
	v := pp.velocity.Velocity(p, pp.previous, tracker.DistanceTraveled(), tracker.DistanceToEnd(), dt)
	pp.previous = v

	target := p.TransformFromLength(tracker.DistanceTraveled() + pp.cfg.LookaheadDistance)
	circle := geometry.NewTangentIntersectionCircle(pose, target.Position)

	// The radius is unsigned; which side of the heading the center is on gives the turn direction.
	ahead := pose.Position.Add(pose.Rotation.Unit().Scale(headingRayLength))
	side := geometry.NewLine(pose.Position, ahead).FindSide(circle.Center)

	cmd := drivetrain.FromLinearAndRadius(v, side*circle.Radius, tracker.TrackWidth())
	if tracker.Reversed() {
		cmd = cmd.Reverse()
	}
	return cmd
}
