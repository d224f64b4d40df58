package follower

import (
	"math"

	"go.viam.com/motioncore/drivetrain"
	"go.viam.com/motioncore/spatialmath"
	"go.viam.com/motioncore/utils"
)

// Ramsete is the nonlinear unicycle tracking law. It drives the pose error to the expected sample
// to zero while feeding forward the path's curvature.
type Ramsete struct {
	cfg      RamseteConfig
	velocity *PathVelocityController
	previous float64
}

// NewRamsete returns a Ramsete strategy.
func NewRamsete(velocity VelocityConfig, cfg RamseteConfig) *Ramsete {
	return &Ramsete{cfg: cfg, velocity: NewPathVelocityController(velocity, 0, 0)}
}

// Reset implements Strategy.
func (r *Ramsete) Reset() {
	r.previous = 0
	r.velocity.Reset()
}

// Calculate implements Strategy.
func (r *Ramsete) Calculate(tracker Tracker, pose spatialmath.Transform, _ drivetrain.State, dt float64) drivetrain.State {
	p := tracker.Path()
	v := r.velocity.Velocity(p, r.previous, tracker.DistanceTraveled(), tracker.DistanceToEnd(), dt)
	r.previous = v

	expected := tracker.Expected()
	w := v * p.Curvature(expected.T)
	e := expected.Transform.RelativeTo(pose)
	eTheta := e.Rotation.Radians()

	b, zeta := r.cfg.AggressiveGain, r.cfg.DampingGain
	k := 2 * zeta * math.Sqrt(w*w+b*v*v)
	linear := v*math.Cos(eTheta) + k*e.Position.X
	angular := w + k*eTheta + b*v*utils.Sinc(eTheta)*e.Position.Y

	cmd := drivetrain.FromLinearAndAngular(linear, angular, tracker.TrackWidth())
	if tracker.Reversed() {
		cmd = cmd.Reverse()
	}
	return cmd
}
