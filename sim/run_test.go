package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/motioncore/drivetrain"
	"go.viam.com/motioncore/follower"
	"go.viam.com/motioncore/logging"
	"go.viam.com/motioncore/motionprofile"
	"go.viam.com/motioncore/path"
	"go.viam.com/motioncore/spatialmath"
	"go.viam.com/motioncore/spline"
)

func straightFollower(t *testing.T, length float64) *follower.Follower {
	t.Helper()
	return newStraightFollower(t, length, false)
}

func newStraightFollower(t *testing.T, length float64, reversed bool) *follower.Follower {
	t.Helper()
	f, err := follower.NewFollower(logging.NewTestLogger(t), follower.Config{
		TrackWidth: 0.5,
		Reversed:   reversed,
		Velocity:   follower.VelocityConfig{MaxAcceleration: 1, MaxDeceleration: 1, MaxVelocity: 1},
		PurePursuit: follower.PurePursuitConfig{
			LookaheadDistance: 1,
		},
	})
	test.That(t, err, test.ShouldBeNil)
	p, err := path.NewPathFromWaypoints([]spatialmath.Transform{
		spatialmath.NewTransform(0, 0, 0),
		spatialmath.NewTransform(length, 0, 0),
	}, spline.QuinticHermiteBuilder)
	test.That(t, err, test.ShouldBeNil)
	f.SetPath(p, false)
	return f
}

func TestRobotApply(t *testing.T) {
	r := NewRobot(spatialmath.NewZeroTransform(), 0.5)
	pose := r.Apply(drivetrain.FromLinearAndAngular(1, 0, 0.5), 0.5)
	test.That(t, pose.AlmostEqual(spatialmath.NewTransform(0.5, 0, 0), 1e-9, 1e-9), test.ShouldBeTrue)
	test.That(t, r.Elapsed(), test.ShouldAlmostEqual, 0.5)

	// A quarter turn on a unit circle.
	r = NewRobot(spatialmath.NewZeroTransform(), 0.5)
	pose = r.Apply(drivetrain.FromLinearAndRadius(1, 1, 0.5), math.Pi/2)
	test.That(t, pose.AlmostEqual(spatialmath.NewTransform(1, 1, 90), 1e-9, 1e-9), test.ShouldBeTrue)

	// Commands for another track width are rescaled.
	r = NewRobot(spatialmath.NewZeroTransform(), 1)
	r.Apply(drivetrain.FromLinearAndAngular(1, 1, 0.5), 0.1)
	test.That(t, r.State().Left(), test.ShouldAlmostEqual, 0.5)
	test.That(t, r.State().Right(), test.ShouldAlmostEqual, 1.5)
}

func TestRobotWheelLimits(t *testing.T) {
	r := NewRobot(spatialmath.NewZeroTransform(), 0.5)
	r.WheelLimits = motionprofile.SafeVelocityController{MaxAcceleration: 2, MaxDeceleration: 4}
	r.Apply(drivetrain.FromLinearAndAngular(1, 0, 0.5), 0.1)
	test.That(t, r.State().Linear(), test.ShouldAlmostEqual, 0.2)
	for i := 0; i < 10; i++ {
		r.Apply(drivetrain.FromLinearAndAngular(1, 0, 0.5), 0.1)
	}
	test.That(t, r.State().Linear(), test.ShouldAlmostEqual, 1)
	r.Apply(drivetrain.Empty(), 0.1)
	test.That(t, r.State().Linear(), test.ShouldAlmostEqual, 0.6)
}

func TestRun(t *testing.T) {
	f := straightFollower(t, 6)
	robot := NewRobot(spatialmath.NewTransform(0, 0.2, 0), 0.5)
	res, err := Run(f, robot, Options{Timestep: 0.02})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Finished, test.ShouldBeTrue)
	test.That(t, res.Steps, test.ShouldEqual, len(res.CrossTrack))
	test.That(t, res.Elapsed, test.ShouldAlmostEqual, float64(res.Steps)*0.02, 1e-9)
	test.That(t, res.Final.X, test.ShouldAlmostEqual, 6, 0.2)
	test.That(t, math.Abs(res.Final.Y), test.ShouldBeLessThan, 0.05)
	test.That(t, res.MaxCrossTrack, test.ShouldBeLessThanOrEqualTo, 0.2+1e-3)
	test.That(t, res.MeanCrossTrack, test.ShouldBeLessThan, res.MaxCrossTrack)
	test.That(t, res.P95CrossTrack, test.ShouldBeLessThanOrEqualTo, res.MaxCrossTrack)
	test.That(t, f.Status(), test.ShouldEqual, follower.StatusFinished)
}

func TestRunReversed(t *testing.T) {
	f := newStraightFollower(t, 5, true)
	// The robot backs down the path, facing its start.
	robot := NewRobot(spatialmath.NewTransform(0, 0.2, 180), 0.5)
	res, err := Run(f, robot, Options{Timestep: 0.02, MaxSteps: 3000})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Finished, test.ShouldBeTrue)
	test.That(t, res.Final.X, test.ShouldAlmostEqual, 5, 0.2)
	test.That(t, math.Abs(res.Final.Y), test.ShouldBeLessThan, 0.05)
	test.That(t, res.MaxCrossTrack, test.ShouldBeLessThanOrEqualTo, 0.25)
	test.That(t, robot.State().Linear(), test.ShouldBeLessThanOrEqualTo, 0)
}

func TestRunStepLimit(t *testing.T) {
	f := straightFollower(t, 6)
	res, err := Run(f, NewRobot(spatialmath.NewZeroTransform(), 0.5), Options{MaxSteps: 10})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Finished, test.ShouldBeFalse)
	test.That(t, res.Steps, test.ShouldEqual, 10)
}

func TestRunErrors(t *testing.T) {
	f, err := follower.NewFollower(logging.NewTestLogger(t), follower.Config{
		TrackWidth: 0.5,
		Velocity:   follower.VelocityConfig{MaxAcceleration: 1, MaxDeceleration: 1, MaxVelocity: 1},
	})
	test.That(t, err, test.ShouldBeNil)
	_, err = Run(f, NewRobot(spatialmath.NewZeroTransform(), 0.5), Options{})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = Run(nil, nil, Options{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRunRealtime(t *testing.T) {
	logger := logging.NewTestLogger(t)
	f := straightFollower(t, 2)
	robot := NewRobot(spatialmath.NewZeroTransform(), 0.5)
	mock := clock.NewMock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if ctx.Err() != nil {
				return
			}
			mock.Add(20 * time.Millisecond)
		}
	}()

	res, err := RunRealtime(ctx, logger, f, robot, Options{Timestep: 0.02, MaxSteps: 50}, mock)
	cancel()
	<-done
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Steps, test.ShouldEqual, 50)
	test.That(t, res.Elapsed, test.ShouldAlmostEqual, 1, 1e-9)
}
