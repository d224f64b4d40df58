package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
	"go.uber.org/multierr"

	"go.viam.com/motioncore/follower"
	"go.viam.com/motioncore/logging"
	"go.viam.com/motioncore/motionprofile"
	"go.viam.com/motioncore/trajectory"
)

const sampleConfig = `{
	"waypoints": [
		{"x": 0, "y": 0, "theta_degs": 0},
		{"x": 4, "y": 4, "theta_degs": 90},
		{"x": 0, "y": 8, "theta_degs": 180}
	],
	"spline": "quintic",
	"trajectory": {
		"max_acceleration": 1,
		"max_velocity": 2,
		"max_angular_acceleration": 3,
		"max_angular_velocity": 2,
		"track_width": 0.5,
		"samples": 100
	},
	"profile": {
		"type": "s_curve",
		"start": {"position": 0, "velocity": 0},
		"end": {"position": 12, "velocity": 0},
		"constraints": {"max_acceleration": 2, "max_deceleration": 2, "max_velocity": 4, "max_jerk": 4},
		"override": "overshoot"
	},
	"follower": {
		"strategy": "ramsete",
		"track_width": 0.5,
		"velocity": {"max_acceleration": 1, "max_deceleration": 1, "max_velocity": 1},
		"attributes": {"aggressive_gain": 3, "damping_gain": 0.5}
	},
	"simulation": {"timestep": 0.02, "start": {"x": 0, "y": 0.2, "theta_degs": 0}},
	"log": [{"pattern": "motioncore.*", "level": "debug"}]
}`

func TestRead(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "run.json")
	test.That(t, os.WriteFile(file, []byte(sampleConfig), 0o600), test.ShouldBeNil)

	cfg, err := Read(file)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(cfg.Waypoints), test.ShouldEqual, 3)
	test.That(t, cfg.Trajectory.MaxVelocity, test.ShouldEqual, 2.0)
	test.That(t, cfg.Trajectory.Samples, test.ShouldEqual, 100)
	test.That(t, cfg.Trajectory.Adaptive(), test.ShouldBeFalse)
	test.That(t, cfg.Simulation.Start, test.ShouldResemble, &Waypoint{X: 0, Y: 0.2})

	transforms := cfg.Transforms()
	test.That(t, transforms[1].Rotation.Degrees(), test.ShouldAlmostEqual, 90)

	p, err := cfg.Path()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.NumSegments(), test.ShouldEqual, 2)
	test.That(t, p.End().AlmostEqual(transforms[2], 1e-9, 1e-9), test.ShouldBeTrue)

	_, err = Read(filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFollowerConfig(t *testing.T) {
	cfg, err := FromBytes([]byte(sampleConfig))
	test.That(t, err, test.ShouldBeNil)

	fc, err := cfg.FollowerConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fc.Strategy, test.ShouldEqual, follower.StrategyRamsete)
	test.That(t, fc.Ramsete, test.ShouldResemble, follower.RamseteConfig{AggressiveGain: 3, DampingGain: 0.5})
	test.That(t, fc.Spline, test.ShouldEqual, "quintic")

	cfg.Follower.Strategy = follower.StrategyPurePursuit
	cfg.Follower.Attributes = AttributeMap{"lookahead_distance": 0.8, "curvature_slowdown_gain": "0.5"}
	fc, err = cfg.FollowerConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fc.PurePursuit.LookaheadDistance, test.ShouldEqual, 0.8)
	test.That(t, fc.PurePursuit.CurvatureSlowdownGain, test.ShouldEqual, 0.5)

	cfg.Follower.Attributes = AttributeMap{"lookahead": 0.8}
	_, err = cfg.FollowerConfig()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "lookahead")
}

func TestTransformAttributeMap(t *testing.T) {
	attrs := AttributeMap{"min": 1, "max": 2.5}
	test.That(t, attrs.Has("min"), test.ShouldBeTrue)
	test.That(t, attrs.Has("mid"), test.ShouldBeFalse)

	bounds, err := TransformAttributeMap[motionprofile.MechanismBounds](attrs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bounds, test.ShouldResemble, motionprofile.MechanismBounds{Min: 1, Max: 2.5})

	ptr, err := TransformAttributeMap[*motionprofile.MechanismBounds](attrs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ptr.Max, test.ShouldEqual, 2.5)

	empty, err := TransformAttributeMap[follower.RamseteConfig](nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, empty, test.ShouldResemble, follower.RamseteConfig{})
}

func TestValidate(t *testing.T) {
	var cfg Config
	test.That(t, json.Unmarshal([]byte(sampleConfig), &cfg), test.ShouldBeNil)
	test.That(t, cfg.Validate(""), test.ShouldBeNil)

	cfg.Waypoints = cfg.Waypoints[:1]
	cfg.Spline = "bezier"
	cfg.Trajectory.MaxVelocity = 0
	cfg.Profile.Constraints.MaxJerk = 0
	cfg.Profile.Override = "bounce"
	cfg.Follower.TrackWidth = -1
	cfg.Simulation.Timestep = -1
	cfg.Log = []logging.LoggerPatternConfig{{Pattern: "a..b", Level: "loud"}}

	err := cfg.Validate("run")
	test.That(t, err, test.ShouldNotBeNil)
	errs := multierr.Errors(err)
	test.That(t, len(errs), test.ShouldBeGreaterThanOrEqualTo, 9)
	msg := err.Error()
	for _, field := range []string{
		"run.waypoints", "run.spline", "run.trajectory", "run.profile.constraints.max_jerk",
		"run.profile.override", "run.follower", "run.simulation.timestep", "log[0]",
	} {
		test.That(t, msg, test.ShouldContainSubstring, field)
	}

	_, err = FromBytes([]byte(`{"waypoints": [`))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestJSON5(t *testing.T) {
	cfg, err := FromBytes([]byte(`{
		// a straight run
		waypoints: [{x: 0, y: 0, theta_degs: 0}, {x: 5, y: 0, theta_degs: 0},],
		trajectory: {
			max_acceleration: 1, max_velocity: 1,
			max_angular_acceleration: 1, max_angular_velocity: 1,
			max_distance: 0.25,
		},
		follower: {track_width: 0.5, velocity: {max_acceleration: 1, max_deceleration: 1, max_velocity: 1}},
	}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Trajectory.Adaptive(), test.ShouldBeTrue)

	p, err := cfg.Path()
	test.That(t, err, test.ShouldBeNil)
	gen, err := trajectory.NewGenerator(logging.NewTestLogger(t), cfg.Trajectory.Limits)
	test.That(t, err, test.ShouldBeNil)
	traj, err := cfg.Trajectory.Generate(gen, p)
	test.That(t, err, test.ShouldBeNil)
	// 5 m halved until every span is at most 0.25 m: 32 spans.
	test.That(t, traj.Len(), test.ShouldEqual, 33)
	test.That(t, traj.Length(), test.ShouldAlmostEqual, 5, 1e-3)

	cfg.Trajectory.MaxDistance = 0
	cfg.Trajectory.Samples = 0
	traj, err = cfg.Trajectory.Generate(gen, p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, traj.Len(), test.ShouldEqual, DefaultSamples)
}

func TestProfileBuild(t *testing.T) {
	cfg, err := FromBytes([]byte(sampleConfig))
	test.That(t, err, test.ShouldBeNil)

	profile, err := cfg.Profile.Build()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, profile.Duration(), test.ShouldAlmostEqual, 5.5, 1e-6)
	test.That(t, profile.Final().Position, test.ShouldAlmostEqual, 12, 1e-6)

	cfg.Profile.Type = "trapezoidal"
	profile, err = cfg.Profile.Build()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, profile.Final().Position, test.ShouldAlmostEqual, 12, 1e-6)
	test.That(t, profile.Duration(), test.ShouldAlmostEqual, 5, 1e-9)
}

func TestApplyLogConfig(t *testing.T) {
	logger := logging.NewLogger("motioncore.configtest")
	test.That(t, logger.GetLevel(), test.ShouldEqual, logging.INFO)

	cfg, err := FromBytes([]byte(sampleConfig))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ApplyLogConfig(), test.ShouldBeNil)
	test.That(t, logger.GetLevel(), test.ShouldEqual, logging.DEBUG)
}

func TestSchema(t *testing.T) {
	schema := Schema()
	out, err := json.Marshal(schema)
	test.That(t, err, test.ShouldBeNil)
	for _, key := range []string{"waypoints", "theta_degs", "max_angular_velocity", "attributes", "violate_constraints"} {
		test.That(t, string(out), test.ShouldContainSubstring, key)
	}
}
