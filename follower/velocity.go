package follower

import (
	"math"

	"go.viam.com/motioncore/motionprofile"
	"go.viam.com/motioncore/path"
)

// maxSlowdownPoints bounds the curvature slowdowns remembered at once.
const maxSlowdownPoints = 32

type slowdownPoint struct {
	distance float64
	velocity float64
}

// PathVelocityController picks the longitudinal velocity along a path: as fast as allowed while
// still able to brake to the end velocity by the end, to the slowdown velocity of every tight turn
// seen ahead, and never changing faster than the acceleration limits allow.
type PathVelocityController struct {
	cfg                   VelocityConfig
	curvatureSlowdownGain float64
	minSlowdownVelocity   float64
	safe                  motionprofile.SafeVelocityController
	pending               []slowdownPoint
}

// NewPathVelocityController returns a controller for cfg. A zero curvatureSlowdownGain disables
// the turn slowdown.
func NewPathVelocityController(cfg VelocityConfig, curvatureSlowdownGain, minSlowdownVelocity float64) *PathVelocityController {
	return &PathVelocityController{
		cfg:                   cfg,
		curvatureSlowdownGain: curvatureSlowdownGain,
		minSlowdownVelocity:   minSlowdownVelocity,
		safe: motionprofile.SafeVelocityController{
			MaxAcceleration: cfg.MaxAcceleration,
			MaxDeceleration: cfg.MaxDeceleration,
		},
	}
}

// Reset forgets every pending slowdown.
func (c *PathVelocityController) Reset() {
	c.pending = c.pending[:0]
}

// Velocity returns the next velocity command given the previous one, the arc length already
// traveled and the arc length remaining.
func (c *PathVelocityController) Velocity(p *path.Path, previous, traveled, remaining, dt float64) float64 {
	dec := c.cfg.MaxDeceleration
	target := math.Min(c.cfg.MaxVelocity, math.Sqrt(c.cfg.EndVelocity*c.cfg.EndVelocity+2*dec*math.Max(0, remaining)))

	if c.curvatureSlowdownGain > 0 && p != nil {
		// Look as far ahead as it takes to stop from the current velocity.
		ahead := traveled + previous*previous/(2*dec)
		if k := math.Abs(p.Curvature(p.ParameterFromLength(ahead))); k > 0 {
			slow := math.Max(c.minSlowdownVelocity, c.curvatureSlowdownGain/k)
			if slow < c.cfg.MaxVelocity && len(c.pending) < maxSlowdownPoints {
				c.pending = append(c.pending, slowdownPoint{distance: ahead, velocity: slow})
			}
		}
	}

	kept := c.pending[:0]
	for _, pt := range c.pending {
		if pt.distance < traveled {
			continue
		}
		kept = append(kept, pt)
		target = math.Min(target, math.Sqrt(pt.velocity*pt.velocity+2*dec*(pt.distance-traveled)))
	}
	c.pending = kept

	return c.safe.Velocity(previous, target, dt)
}
