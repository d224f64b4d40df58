// Package trajectory turns a path into a time-parameterized velocity plan that respects linear
// and angular velocity and acceleration limits.
package trajectory

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/motioncore/logging"
	"go.viam.com/motioncore/path"
	"go.viam.com/motioncore/utils"
)

// maxTurnRadius is the radius beyond which linear velocity is not re-derived from the clamped
// angular velocity.
const maxTurnRadius = 1e4

// Limits are the kinematic limits of the drive and the boundary velocities of the trajectory.
type Limits struct {
	MaxAcceleration        float64 `json:"max_acceleration"`
	MaxVelocity            float64 `json:"max_velocity"`
	MaxAngularAcceleration float64 `json:"max_angular_acceleration"`
	MaxAngularVelocity     float64 `json:"max_angular_velocity"`
	TrackWidth             float64 `json:"track_width"`
	StartVelocity          float64 `json:"start_velocity,omitempty"`
	EndVelocity            float64 `json:"end_velocity,omitempty"`
}

// Validate ensures all parts of the limits are valid.
func (l Limits) Validate() error {
	var err error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			err = multierr.Append(err, errors.Errorf("%s must be positive and finite, got %v", name, v))
		}
	}
	positive("max_acceleration", l.MaxAcceleration)
	positive("max_velocity", l.MaxVelocity)
	positive("max_angular_acceleration", l.MaxAngularAcceleration)
	positive("max_angular_velocity", l.MaxAngularVelocity)
	if l.TrackWidth < 0 {
		err = multierr.Append(err, errors.Errorf("track_width cannot be negative, got %v", l.TrackWidth))
	}
	if l.StartVelocity < 0 || l.EndVelocity < 0 {
		err = multierr.Append(err, errors.New("start_velocity and end_velocity cannot be negative"))
	}
	return err
}

// Generator plans trajectories under a fixed set of limits. It holds no per-path state and can be
// reused for any number of paths.
type Generator struct {
	logger logging.Logger
	limits Limits
}

// NewGenerator returns a generator for the given limits.
func NewGenerator(logger logging.Logger, limits Limits) (*Generator, error) {
	if err := limits.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid trajectory limits")
	}
	return &Generator{logger: logger, limits: limits}, nil
}

// Limits returns the generator's limits.
func (g *Generator) Limits() Limits {
	return g.limits
}

// Generate samples the path at samples evenly spaced parameters.
func (g *Generator) Generate(p *path.Path, samples int) (*Trajectory, error) {
	if samples < 2 {
		return nil, errors.Errorf("trajectory needs at least 2 samples, got %d", samples)
	}
	ts := make([]float64, samples)
	floats.Span(ts, 0, 1)
	return g.GenerateFromParameters(p, ts)
}

// GenerateAdaptive samples the path with Parameterize and generates from those parameters.
func (g *Generator) GenerateAdaptive(p *path.Path, maxDistanceDelta, maxAngleDelta float64, maxDepth int) (*Trajectory, error) {
	return g.GenerateFromParameters(p, Parameterize(p, maxDistanceDelta, maxAngleDelta, maxDepth))
}

// GenerateFromParameters plans velocities at the given increasing path parameters.
//
// A backward pass from the end velocity bounds every sample by what can still be braked away
// before the end. A forward pass from the start velocity then bounds it by what can be reached
// from the start. Both passes respect the curvature ceiling, where the outer wheel or the angular
// velocity saturates.
//
// Angular acceleration between neighbors i and j over length L is bounded through
// v_i·k_i − v_j·k_j = k̄·(v_i − v_j) + v̄·(k_i − k_j). Capping both samples at
// √(α·L / 2|k_i − k_j|) keeps the second term within half the budget, and limiting the change
// of v² on the step to α·L/|k̄| keeps the first within the other half. The step then takes at
// least 2·L/(v_i + v_j), so |w_i − w_j| stays within α times the step's duration.
func (g *Generator) GenerateFromParameters(p *path.Path, ts []float64) (*Trajectory, error) {
	if p == nil {
		return nil, errors.New("cannot generate a trajectory without a path")
	}
	n := len(ts)
	if n < 2 {
		return nil, errors.Errorf("trajectory needs at least 2 samples, got %d", n)
	}
	for i := 1; i < n; i++ {
		if !(ts[i] > ts[i-1]) {
			return nil, errors.Errorf("trajectory parameters must increase, got %v after %v", ts[i], ts[i-1])
		}
	}

	lim := g.limits
	traj := &Trajectory{
		Parameters:        append([]float64(nil), ts...),
		Distances:         make([]float64, n),
		LinearVelocities:  make([]float64, n),
		AngularVelocities: make([]float64, n),
		Curvatures:        make([]float64, n),
		Times:             make([]float64, n),
		TrackWidth:        lim.TrackWidth,
	}

	lengths := make([]float64, n)
	turns := make([]float64, n)
	ceilings := make([]float64, n)
	prevHeading := p.Rotation(ts[0])
	for i, t := range ts {
		k := p.Curvature(t)
		traj.Curvatures[i] = k
		ceilings[i] = g.curvatureCeiling(k)
		heading := p.Rotation(t)
		if i > 0 {
			lengths[i] = p.Length(ts[i-1], t)
			turns[i] = math.Abs(heading.Sub(prevHeading).Radians())
		}
		prevHeading = heading
	}
	floats.CumSum(traj.Distances, lengths)

	// accels[i] is the v² rate allowed between samples i-1 and i.
	accels := make([]float64, n)
	for i := 1; i < n; i++ {
		ki, kj := traj.Curvatures[i], traj.Curvatures[i-1]
		accels[i] = lim.MaxAcceleration
		if mean := math.Abs(ki+kj) / 2; mean > 0 {
			accels[i] = math.Min(accels[i], lim.MaxAngularAcceleration/(2*mean))
		}
		if jump := math.Abs(ki - kj); jump > 0 {
			jumpCap := math.Sqrt(lim.MaxAngularAcceleration * lengths[i] / (2 * jump))
			ceilings[i] = math.Min(ceilings[i], jumpCap)
			ceilings[i-1] = math.Min(ceilings[i-1], jumpCap)
		}
	}

	limit := func(i int, neighbor float64, step int) float64 {
		v := math.Min(ceilings[i], lim.MaxVelocity)
		return math.Min(v, math.Sqrt(neighbor*neighbor+2*accels[step]*lengths[step]))
	}

	backward := make([]float64, n)
	backward[n-1] = math.Min(lim.EndVelocity, math.Min(ceilings[n-1], lim.MaxVelocity))
	for i := n - 2; i >= 0; i-- {
		backward[i] = limit(i, backward[i+1], i+1)
	}

	v := traj.LinearVelocities
	v[0] = math.Min(lim.StartVelocity, backward[0])
	for i := 1; i < n; i++ {
		v[i] = math.Min(backward[i], limit(i, v[i-1], i))
	}

	for i, k := range traj.Curvatures {
		w := utils.Clamp(v[i]*k, -lim.MaxAngularVelocity, lim.MaxAngularVelocity)
		traj.AngularVelocities[i] = w
		if k != 0 && math.Abs(1/k) < maxTurnRadius {
			v[i] = w / k
		}
	}

	steps := make([]float64, n)
	for i := 1; i < n; i++ {
		linear := utils.FiniteOr(2*lengths[i]/(v[i-1]+v[i]), 0)
		angular := utils.FiniteOr(2*turns[i]/(math.Abs(traj.AngularVelocities[i-1])+math.Abs(traj.AngularVelocities[i])), 0)
		steps[i] = math.Max(linear, angular)
	}
	floats.CumSum(traj.Times, steps)

	g.logger.Debugw("generated trajectory",
		"samples", n,
		"length", traj.Distances[n-1],
		"duration", traj.Duration(),
	)
	return traj, nil
}

// curvatureCeiling is the fastest the drive can follow curvature k: the outer wheel may not exceed
// the velocity limit and the body may not exceed the angular velocity limit.
func (g *Generator) curvatureCeiling(k float64) float64 {
	k = math.Abs(k)
	if k == 0 {
		return g.limits.MaxVelocity
	}
	return math.Min(g.limits.MaxVelocity/(1+k*g.limits.TrackWidth/2), g.limits.MaxAngularVelocity/k)
}
