package follower

import (
	"github.com/pkg/errors"

	"go.viam.com/motioncore/drivetrain"
	"go.viam.com/motioncore/path"
	"go.viam.com/motioncore/spatialmath"
)

// Tracker is the read-only view of a Follower's progress handed to its strategy.
type Tracker interface {
	Path() *path.Path
	// Expected is the dead-reckoned sample the follower believes it has reached.
	Expected() path.Sample
	DistanceTraveled() float64
	DistanceToEnd() float64
	Reversed() bool
	TrackWidth() float64
}

// Strategy computes one drive command per control cycle. The pose it receives is already turned
// around when the follower drives in reverse; the strategy reverses its own command.
type Strategy interface {
	Calculate(tracker Tracker, pose spatialmath.Transform, current drivetrain.State, dt float64) drivetrain.State
	// Reset clears per-path state when a new path is set.
	Reset()
}

func newStrategy(cfg Config) (Strategy, error) {
	switch cfg.Strategy {
	case StrategyPurePursuit:
		return NewPurePursuit(cfg.Velocity, cfg.PurePursuit), nil
	case StrategyRamsete:
		return NewRamsete(cfg.Velocity, cfg.Ramsete), nil
	default:
		return nil, errors.Errorf("unknown path following strategy %q", cfg.Strategy)
	}
}
