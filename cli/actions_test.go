package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

const runConfig = `{
	"waypoints": [
		{"x": 0, "y": 0, "theta_degs": 0},
		{"x": 3, "y": 0, "theta_degs": 0}
	],
	"trajectory": {
		"max_acceleration": 1,
		"max_velocity": 1,
		"max_angular_acceleration": 2,
		"max_angular_velocity": 2,
		"track_width": 0.5,
		"samples": 31
	},
	"profile": {
		"start": {"position": 0, "velocity": 0},
		"end": {"position": 10, "velocity": 0},
		"constraints": {"max_acceleration": 2, "max_deceleration": 2, "max_velocity": 4}
	},
	"follower": {
		"strategy": "pure_pursuit",
		"track_width": 0.5,
		"velocity": {"max_acceleration": 1, "max_deceleration": 1, "max_velocity": 1},
		"attributes": {"lookahead_distance": 1}
	},
	"simulation": {"timestep": 0.02}
}`

func setup(t *testing.T) (string, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "run.json")
	test.That(t, os.WriteFile(file, []byte(runConfig), 0o600), test.ShouldBeNil)
	return file, &bytes.Buffer{}, &bytes.Buffer{}
}

func TestTrajectoryAction(t *testing.T) {
	file, out, errOut := setup(t)
	err := NewApp(out, errOut).Run([]string{"motioncore", "trajectory", "--config", file, "--every", "5"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "CURVATURE")
	test.That(t, out.String(), test.ShouldContainSubstring, "31 samples")

	err = NewApp(out, errOut).Run([]string{"motioncore", "trajectory", "--config", file, "--every", "0"})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProfileAction(t *testing.T) {
	file, out, errOut := setup(t)
	err := NewApp(out, errOut).Run([]string{"motioncore", "profile", "-c", file, "--timestep", "0.5"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "VELOCITY")
	test.That(t, out.String(), test.ShouldContainSubstring, "4.500")
	test.That(t, errOut.Len(), test.ShouldEqual, 0)
}

func TestFollowAction(t *testing.T) {
	file, out, errOut := setup(t)
	err := NewApp(out, errOut).Run([]string{"motioncore", "follow", "--config", file})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "pure_pursuit")
	test.That(t, out.String(), test.ShouldContainSubstring, "Max cross-track")
	test.That(t, errOut.String(), test.ShouldNotContainSubstring, "did not finish")
}

func TestSchemaAction(t *testing.T) {
	_, out, errOut := setup(t)
	err := NewApp(out, errOut).Run([]string{"motioncore", "schema"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "waypoints")
}

func TestMissingConfig(t *testing.T) {
	_, out, errOut := setup(t)
	err := NewApp(out, errOut).Run([]string{"motioncore", "follow", "--config", filepath.Join(t.TempDir(), "nope.json")})
	test.That(t, err, test.ShouldNotBeNil)
}
