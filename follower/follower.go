// Package follower tracks a path in closed loop. A Follower is driven once per control cycle with
// the robot's pose and returns the drive command for that cycle.
//
// A Follower is owned by a single control loop and has no internal locking. Replacing the path
// from another goroutine while Update runs is not supported.
package follower

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/motioncore/drivetrain"
	"go.viam.com/motioncore/logging"
	"go.viam.com/motioncore/path"
	"go.viam.com/motioncore/spatialmath"
	"go.viam.com/motioncore/spline"
)

// Status is where a Follower is in its lifecycle.
type Status int

// The follower moves from StatusNoPath to StatusTracking when given a path, and to StatusFinished
// when IsFinished first reports true. Only SetPath leaves StatusFinished.
const (
	StatusNoPath Status = iota
	StatusTracking
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusNoPath:
		return "no_path"
	case StatusTracking:
		return "tracking"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Nearest point search settings for the remaining distance, which only gates finishing.
const (
	roughSearchIncrement = 10
	roughSearches        = 3
)

// Follower tracks one path at a time with a Strategy.
type Follower struct {
	logger   logging.Logger
	cfg      Config
	strategy Strategy
	builder  spline.Builder

	status      Status
	path        *path.Path
	totalLength float64
	unadapted   bool
	goal        []spatialmath.Transform
	expected    path.Sample
	traveled    float64
	toEnd       float64
}

var _ Tracker = (*Follower)(nil)

// NewFollower returns a follower running the strategy named in cfg.
func NewFollower(logger logging.Logger, cfg Config) (*Follower, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid path follower config")
	}
	cfg = cfg.withDefaults()
	strategy, err := newStrategy(cfg)
	if err != nil {
		return nil, err
	}
	builder, err := spline.BuilderByName(cfg.Spline)
	if err != nil {
		return nil, err
	}
	return &Follower{
		logger:   logger,
		cfg:      cfg,
		strategy: strategy,
		builder:  builder,
		toEnd:    math.MaxFloat64,
	}, nil
}

// SetPath replaces the path being followed. With adapt set, the next Update first splices the
// path onto the robot's pose.
func (f *Follower) SetPath(p *path.Path, adapt bool) {
	f.strategy.Reset()
	f.traveled = 0
	f.toEnd = math.MaxFloat64
	f.unadapted = false
	f.goal = nil
	if p == nil {
		f.path = nil
		f.status = StatusNoPath
		return
	}
	f.path = p
	f.totalLength = p.TotalLength()
	f.unadapted = adapt
	f.expected = path.Sample{Transform: p.Start(), T: 0}
	f.status = StatusTracking
	f.logger.Debugw("following new path",
		"strategy", f.cfg.Strategy,
		"segments", p.NumSegments(),
		"length", f.totalLength,
		"adapt", adapt,
	)
}

// SetGoal follows a path that ends at goal after passing through via, approaching goal straight
// along its heading. The next Update refits the path to start at the robot's pose.
func (f *Follower) SetGoal(goal spatialmath.Transform, via ...spatialmath.Transform) error {
	waypoints := append([]spatialmath.Transform(nil), via...)
	waypoints = append(waypoints, goal.Translate(-f.cfg.ApproachDistance), goal)
	p, err := path.NewPathFromWaypoints(waypoints, f.builder)
	if err != nil {
		return errors.Wrap(err, "cannot build path to goal")
	}
	f.SetPath(p, true)
	f.goal = waypoints
	return nil
}

// splice returns the path to follow from pose on.
func (f *Follower) splice(pose spatialmath.Transform) (*path.Path, error) {
	if f.goal != nil {
		return path.NewPathFromWaypoints(append([]spatialmath.Transform{pose}, f.goal...), f.builder)
	}
	return f.path.Adapt(pose, !f.cfg.KeepPathHeading)
}

// Update returns the drive command for this cycle given the robot's pose, its current drive state
// and the cycle length in seconds.
func (f *Follower) Update(pose spatialmath.Transform, current drivetrain.State, dt float64) drivetrain.State {
	if f.path == nil {
		f.logger.Warn("path follower has no path to follow")
		return drivetrain.Empty()
	}
	if f.cfg.Reversed {
		pose = pose.Reversed()
	}

	if f.unadapted {
		f.unadapted = false
		adapted, err := f.splice(pose)
		if err != nil {
			f.logger.Warnw("cannot splice path onto robot pose, following it as is", "error", err)
		} else {
			f.path = adapted
			f.totalLength = adapted.TotalLength()
			f.traveled = 0
			f.expected = path.Sample{Transform: adapted.Start(), T: 0}
		}
	}

	closest := f.path.ClosestTransform(pose.Position, roughSearchIncrement, roughSearches)
	f.toEnd = math.Max(0, f.totalLength-f.path.Length(0, closest.T))

	cmd := f.strategy.Calculate(f, pose, current, dt)

	f.traveled += math.Abs(cmd.Linear()) * dt
	t := f.path.ParameterFromLength(f.traveled)
	f.expected = path.Sample{Transform: f.path.Transform(t), T: t}
	return cmd
}

// IsFinished reports whether the remaining distance is under tolerance. The first true result
// moves the follower to StatusFinished.
func (f *Follower) IsFinished(tolerance float64) bool {
	if f.path == nil {
		return false
	}
	if f.status == StatusFinished {
		return true
	}
	if f.toEnd < tolerance {
		f.status = StatusFinished
		f.logger.Infow("path follower finished", "traveled", f.traveled, "remaining", f.toEnd)
		return true
	}
	return false
}

// Status returns the follower's lifecycle state.
func (f *Follower) Status() Status {
	return f.status
}

// Path returns the path being followed, after splicing.
func (f *Follower) Path() *path.Path {
	return f.path
}

// Expected returns the dead-reckoned sample on the path.
func (f *Follower) Expected() path.Sample {
	return f.expected
}

// DistanceTraveled returns the dead-reckoned arc length covered since the path was set.
func (f *Follower) DistanceTraveled() float64 {
	return f.traveled
}

// DistanceToEnd returns the arc length from the robot's closest point to the end of the path.
func (f *Follower) DistanceToEnd() float64 {
	return f.toEnd
}

// Reversed reports whether the path is driven backwards.
func (f *Follower) Reversed() bool {
	return f.cfg.Reversed
}

// TrackWidth returns the drive's track width.
func (f *Follower) TrackWidth() float64 {
	return f.cfg.TrackWidth
}

// Config returns the follower's config with defaults applied.
func (f *Follower) Config() Config {
	return f.cfg
}
