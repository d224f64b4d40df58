package follower

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// StrategyName selects a path following strategy.
type StrategyName string

// The closed set of strategies a Follower can run.
const (
	StrategyPurePursuit = StrategyName("pure_pursuit")
	StrategyRamsete     = StrategyName("ramsete")
)

const (
	// DefaultLookaheadDistance is used when PurePursuitConfig.LookaheadDistance is unset.
	DefaultLookaheadDistance = 0.5
	// DefaultAggressiveGain and DefaultDampingGain are the usual Ramsete gains, b and zeta.
	DefaultAggressiveGain = 2.0
	DefaultDampingGain    = 0.7
	// DefaultApproachDistance is how far before a goal SetGoal starts its path.
	DefaultApproachDistance = 1.0
)

// VelocityConfig limits the longitudinal velocity command.
type VelocityConfig struct {
	MaxAcceleration float64 `json:"max_acceleration"`
	MaxDeceleration float64 `json:"max_deceleration"`
	MaxVelocity     float64 `json:"max_velocity"`
	EndVelocity     float64 `json:"end_velocity,omitempty"`
}

// PurePursuitConfig tunes the pure pursuit strategy. With a positive CurvatureSlowdownGain the
// velocity is reduced ahead of tight turns to gain/curvature, but not below MinSlowdownVelocity.
type PurePursuitConfig struct {
	LookaheadDistance     float64 `json:"lookahead_distance,omitempty"`
	CurvatureSlowdownGain float64 `json:"curvature_slowdown_gain,omitempty"`
	MinSlowdownVelocity   float64 `json:"min_slowdown_velocity,omitempty"`
}

// RamseteConfig tunes the Ramsete strategy. AggressiveGain (b > 0) tightens convergence and
// DampingGain (0 < zeta < 1) damps it.
type RamseteConfig struct {
	AggressiveGain float64 `json:"aggressive_gain,omitempty"`
	DampingGain    float64 `json:"damping_gain,omitempty"`
}

// Config describes a Follower.
type Config struct {
	Strategy         StrategyName      `json:"strategy"`
	TrackWidth       float64           `json:"track_width"`
	Reversed         bool              `json:"reversed,omitempty"`
	KeepPathHeading  bool              `json:"keep_path_heading,omitempty"`
	Spline           string            `json:"spline,omitempty"`
	ApproachDistance float64           `json:"approach_distance,omitempty"`
	Velocity         VelocityConfig    `json:"velocity"`
	PurePursuit      PurePursuitConfig `json:"pure_pursuit,omitempty"`
	Ramsete          RamseteConfig     `json:"ramsete,omitempty"`
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return errors.Errorf("%s must be positive and finite, got %v", name, v)
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	var err error
	switch cfg.Strategy {
	case StrategyPurePursuit, StrategyRamsete, "":
	default:
		err = multierr.Append(err, errors.Errorf("unknown path following strategy %q", cfg.Strategy))
	}
	err = multierr.Combine(err,
		positive("track_width", cfg.TrackWidth),
		positive("velocity.max_acceleration", cfg.Velocity.MaxAcceleration),
		positive("velocity.max_deceleration", cfg.Velocity.MaxDeceleration),
		positive("velocity.max_velocity", cfg.Velocity.MaxVelocity),
	)
	if cfg.Velocity.EndVelocity < 0 || cfg.Velocity.EndVelocity > cfg.Velocity.MaxVelocity {
		err = multierr.Append(err, errors.Errorf("velocity.end_velocity must be within [0, max_velocity], got %v",
			cfg.Velocity.EndVelocity))
	}
	if cfg.PurePursuit.LookaheadDistance < 0 {
		err = multierr.Append(err, errors.New("pure_pursuit.lookahead_distance cannot be negative"))
	}
	if cfg.PurePursuit.CurvatureSlowdownGain < 0 || cfg.PurePursuit.MinSlowdownVelocity < 0 {
		err = multierr.Append(err, errors.New("pure_pursuit slowdown settings cannot be negative"))
	}
	if cfg.Ramsete.AggressiveGain < 0 {
		err = multierr.Append(err, errors.New("ramsete.aggressive_gain cannot be negative"))
	}
	if cfg.Ramsete.DampingGain < 0 || cfg.Ramsete.DampingGain >= 1 {
		err = multierr.Append(err, errors.Errorf("ramsete.damping_gain must be within [0, 1), got %v", cfg.Ramsete.DampingGain))
	}
	if cfg.ApproachDistance < 0 {
		err = multierr.Append(err, errors.New("approach_distance cannot be negative"))
	}
	return err
}

// withDefaults fills every unset optional field.
func (cfg Config) withDefaults() Config {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyPurePursuit
	}
	if cfg.PurePursuit.LookaheadDistance == 0 {
		cfg.PurePursuit.LookaheadDistance = DefaultLookaheadDistance
	}
	if cfg.Ramsete.AggressiveGain == 0 {
		cfg.Ramsete.AggressiveGain = DefaultAggressiveGain
	}
	if cfg.Ramsete.DampingGain == 0 {
		cfg.Ramsete.DampingGain = DefaultDampingGain
	}
	if cfg.ApproachDistance == 0 {
		cfg.ApproachDistance = DefaultApproachDistance
	}
	return cfg
}
