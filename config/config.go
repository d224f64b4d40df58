// Package config defines the JSON document that configures a motioncore run: the route, the
// trajectory and profile limits, the path follower and the simulated robot.
package config

import (
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/multierr"

	"go.viam.com/motioncore/follower"
	"go.viam.com/motioncore/logging"
	"go.viam.com/motioncore/motionprofile"
	"go.viam.com/motioncore/path"
	"go.viam.com/motioncore/spatialmath"
	"go.viam.com/motioncore/spline"
	"go.viam.com/motioncore/trajectory"
	"go.viam.com/motioncore/utils"
)

// Config is a full motioncore run configuration.
type Config struct {
	Waypoints  []Waypoint                    `json:"waypoints"`
	Spline     string                        `json:"spline,omitempty" jsonschema:"enum=cubic,enum=quintic"`
	Trajectory TrajectoryConfig              `json:"trajectory"`
	Profile    *ProfileConfig                `json:"profile,omitempty"`
	Follower   FollowerConfig                `json:"follower"`
	Simulation SimulationConfig              `json:"simulation,omitempty"`
	Log        []logging.LoggerPatternConfig `json:"log,omitempty"`
}

// Waypoint is a pose with its heading in degrees.
type Waypoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta_degs"`
}

// Transform returns the waypoint as a Transform.
func (w Waypoint) Transform() spatialmath.Transform {
	return spatialmath.NewTransform(w.X, w.Y, w.Theta)
}

// TrajectoryConfig sets the trajectory limits and how the path is sampled. With a positive
// MaxDistance or MaxAngle the path is sampled adaptively; otherwise Samples evenly spaced
// parameters are used.
type TrajectoryConfig struct {
	trajectory.Limits
	Samples     int     `json:"samples,omitempty"`
	MaxDistance float64 `json:"max_distance,omitempty"`
	MaxAngle    float64 `json:"max_angle_degs,omitempty"`
	MaxDepth    int     `json:"max_depth,omitempty"`
}

// Sampling defaults for a TrajectoryConfig with the field unset.
const (
	DefaultSamples  = 200
	DefaultMaxDepth = 8
)

// ProfileConfig describes a single-axis motion profile.
type ProfileConfig struct {
	Type        string                         `json:"type,omitempty" jsonschema:"enum=trapezoidal,enum=s_curve"`
	Start       motionprofile.MotionState      `json:"start"`
	End         motionprofile.MotionState      `json:"end"`
	Constraints motionprofile.Constraints      `json:"constraints"`
	Override    string                         `json:"override,omitempty" jsonschema:"enum=end_after_setpoint,enum=overshoot,enum=violate_constraints"`
	Bounds      *motionprofile.MechanismBounds `json:"bounds,omitempty"`
}

// FollowerConfig configures the path follower. Attributes holds the settings of the selected
// strategy.
type FollowerConfig struct {
	Strategy         follower.StrategyName   `json:"strategy,omitempty"`
	TrackWidth       float64                 `json:"track_width"`
	Reversed         bool                    `json:"reversed,omitempty"`
	KeepPathHeading  bool                    `json:"keep_path_heading,omitempty"`
	ApproachDistance float64                 `json:"approach_distance,omitempty"`
	Velocity         follower.VelocityConfig `json:"velocity"`
	Attributes       AttributeMap            `json:"attributes,omitempty"`
}

// SimulationConfig configures the simulated robot the follower drives.
type SimulationConfig struct {
	Start                *Waypoint `json:"start,omitempty"`
	Timestep             float64   `json:"timestep,omitempty"`
	MaxSteps             int       `json:"max_steps,omitempty"`
	FinishTolerance      float64   `json:"finish_tolerance,omitempty"`
	WheelMaxAcceleration float64   `json:"wheel_max_acceleration,omitempty"`
	WheelMaxDeceleration float64   `json:"wheel_max_deceleration,omitempty"`
	Realtime             bool      `json:"realtime,omitempty"`
}

// Read reads and validates the config file at filePath.
func Read(filePath string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config file %q", filePath)
	}
	return FromBytes(data)
}

// FromBytes parses and validates a config. JSON5 is accepted, so files may carry comments and
// trailing commas.
func FromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func fieldPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// Validate ensures all parts of the config are valid. Every failure is reported, prefixed with
// its field path under path.
func (cfg *Config) Validate(path string) error {
	var err error
	if len(cfg.Waypoints) < 2 {
		err = multierr.Append(err, errors.Errorf("%s: need at least 2 waypoints, got %d",
			fieldPath(path, "waypoints"), len(cfg.Waypoints)))
	}
	if _, e := spline.BuilderByName(cfg.Spline); e != nil {
		err = multierr.Append(err, errors.Wrap(e, fieldPath(path, "spline")))
	}
	err = multierr.Append(err, cfg.Trajectory.Validate(fieldPath(path, "trajectory")))
	if cfg.Profile != nil {
		err = multierr.Append(err, cfg.Profile.Validate(fieldPath(path, "profile")))
	}
	if _, e := cfg.FollowerConfig(); e != nil {
		err = multierr.Append(err, errors.Wrap(e, fieldPath(path, "follower")))
	}
	err = multierr.Append(err, cfg.Simulation.Validate(fieldPath(path, "simulation")))
	if e := logging.ValidatePatternConfigs(cfg.Log); e != nil {
		err = multierr.Append(err, e)
	}
	return err
}

// Validate ensures all parts of the trajectory config are valid.
func (tc *TrajectoryConfig) Validate(path string) error {
	var err error
	if e := tc.Limits.Validate(); e != nil {
		err = multierr.Append(err, errors.Wrap(e, path))
	}
	if tc.Samples < 0 || tc.Samples == 1 {
		err = multierr.Append(err, errors.Errorf("%s: samples must be 0 or at least 2, got %d",
			fieldPath(path, "samples"), tc.Samples))
	}
	if tc.MaxDistance < 0 || tc.MaxAngle < 0 || tc.MaxDepth < 0 {
		err = multierr.Append(err, errors.Errorf("%s: adaptive sampling settings cannot be negative", path))
	}
	return err
}

// Generate plans the trajectory along p as configured.
func (tc *TrajectoryConfig) Generate(gen *trajectory.Generator, p *path.Path) (*trajectory.Trajectory, error) {
	if tc.Adaptive() {
		depth := tc.MaxDepth
		if depth == 0 {
			depth = DefaultMaxDepth
		}
		return gen.GenerateAdaptive(p, tc.MaxDistance, utils.DegToRad(tc.MaxAngle), depth)
	}
	samples := tc.Samples
	if samples == 0 {
		samples = DefaultSamples
	}
	return gen.Generate(p, samples)
}

// Adaptive reports whether the path should be sampled adaptively.
func (tc *TrajectoryConfig) Adaptive() bool {
	return tc.MaxDistance > 0 || tc.MaxAngle > 0
}

// Validate ensures all parts of the profile config are valid.
func (pc *ProfileConfig) Validate(path string) error {
	var err error
	switch pc.Type {
	case "", "trapezoidal":
	case "s_curve":
		if !(pc.Constraints.MaxJerk > 0) {
			err = multierr.Append(err, errors.Errorf("%s: s_curve profiles need a positive max_jerk",
				fieldPath(path, "constraints.max_jerk")))
		}
	default:
		err = multierr.Append(err, errors.Errorf("%s: unknown profile type %q", fieldPath(path, "type"), pc.Type))
	}
	if e := pc.Constraints.Validate(); e != nil {
		err = multierr.Append(err, errors.Wrap(e, fieldPath(path, "constraints")))
	}
	if _, e := motionprofile.ParseOverrideMethod(pc.Override); e != nil {
		err = multierr.Append(err, errors.Wrap(e, fieldPath(path, "override")))
	}
	if pc.Bounds != nil {
		if e := pc.Bounds.Validate(); e != nil {
			err = multierr.Append(err, errors.Wrap(e, fieldPath(path, "bounds")))
		}
	}
	return err
}

// Build plans the configured profile.
func (pc *ProfileConfig) Build() (*motionprofile.MotionProfile, error) {
	override, err := motionprofile.ParseOverrideMethod(pc.Override)
	if err != nil {
		return nil, err
	}
	if pc.Type == "s_curve" {
		return motionprofile.NewSCurveMotionProfile(pc.Start, pc.End, pc.Constraints, override, pc.Bounds)
	}
	return motionprofile.NewTrapezoidalMotionProfile(pc.Start, pc.End, pc.Constraints, override, pc.Bounds)
}

// Validate ensures all parts of the simulation config are valid.
func (sc *SimulationConfig) Validate(path string) error {
	var err error
	if sc.Timestep < 0 {
		err = multierr.Append(err, errors.Errorf("%s: cannot be negative", fieldPath(path, "timestep")))
	}
	if sc.Realtime && sc.Timestep > 0 && 1/sc.Timestep > 200 {
		err = multierr.Append(err, errors.Errorf("%s: realtime runs cannot step faster than 200 Hz",
			fieldPath(path, "timestep")))
	}
	if sc.MaxSteps < 0 || sc.FinishTolerance < 0 {
		err = multierr.Append(err, errors.Errorf("%s: max_steps and finish_tolerance cannot be negative", path))
	}
	if sc.WheelMaxAcceleration < 0 || sc.WheelMaxDeceleration < 0 {
		err = multierr.Append(err, errors.Errorf("%s: wheel limits cannot be negative", path))
	}
	return err
}

// Transforms returns the waypoints as transforms.
func (cfg *Config) Transforms() []spatialmath.Transform {
	return lo.Map(cfg.Waypoints, func(w Waypoint, _ int) spatialmath.Transform {
		return w.Transform()
	})
}

// Path fits the configured spline through the waypoints.
func (cfg *Config) Path() (*path.Path, error) {
	builder, err := spline.BuilderByName(cfg.Spline)
	if err != nil {
		return nil, err
	}
	return path.NewPathFromWaypoints(cfg.Transforms(), builder)
}

// FollowerConfig assembles the follower config, decoding the strategy attributes into the
// selected strategy's settings.
func (cfg *Config) FollowerConfig() (follower.Config, error) {
	fc := cfg.Follower
	out := follower.Config{
		Strategy:         fc.Strategy,
		TrackWidth:       fc.TrackWidth,
		Reversed:         fc.Reversed,
		KeepPathHeading:  fc.KeepPathHeading,
		Spline:           cfg.Spline,
		ApproachDistance: fc.ApproachDistance,
		Velocity:         fc.Velocity,
	}
	switch fc.Strategy {
	case follower.StrategyPurePursuit, "":
		attrs, err := TransformAttributeMap[follower.PurePursuitConfig](fc.Attributes)
		if err != nil {
			return follower.Config{}, errors.Wrap(err, "attributes")
		}
		out.PurePursuit = attrs
	case follower.StrategyRamsete:
		attrs, err := TransformAttributeMap[follower.RamseteConfig](fc.Attributes)
		if err != nil {
			return follower.Config{}, errors.Wrap(err, "attributes")
		}
		out.Ramsete = attrs
	}
	if err := out.Validate(); err != nil {
		return follower.Config{}, err
	}
	return out, nil
}

// ApplyLogConfig sets the level of every registered logger matched by the log patterns.
func (cfg *Config) ApplyLogConfig() error {
	return logging.UpdateLoggerRegistry(cfg.Log)
}

// Schema returns the JSON schema of a config document.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}

func (w Waypoint) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.1f°)", w.X, w.Y, w.Theta)
}
