package sim

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/motioncore/control"
	"go.viam.com/motioncore/follower"
	"go.viam.com/motioncore/logging"
	"go.viam.com/motioncore/path"
)

// Defaults for a zero Options.
const (
	DefaultTimestep        = 0.02
	DefaultMaxSteps        = 10000
	DefaultFinishTolerance = 0.05
)

// Options bounds a simulated run.
type Options struct {
	// Timestep is the control period in seconds.
	Timestep float64
	// MaxSteps ends the run unfinished.
	MaxSteps        int
	FinishTolerance float64
}

func (o Options) withDefaults() Options {
	if o.Timestep <= 0 {
		o.Timestep = DefaultTimestep
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.FinishTolerance <= 0 {
		o.FinishTolerance = DefaultFinishTolerance
	}
	return o
}

// Result summarizes a run. Cross-track errors are distances from the robot to the nearest point
// of the path being followed, sampled once per step.
type Result struct {
	Steps      int
	Elapsed    float64
	Finished   bool
	Final      Pose
	CrossTrack []float64

	MeanCrossTrack   float64
	MaxCrossTrack    float64
	StdDevCrossTrack float64
	P95CrossTrack    float64
}

// Pose is a flattened pose for reports, with the heading in degrees.
type Pose struct {
	X, Y, Theta float64
}

// runner advances a follower and a robot one step at a time.
type runner struct {
	follower *follower.Follower
	robot    *Robot
	opts     Options
	result   Result
}

func newRunner(f *follower.Follower, robot *Robot, opts Options) (*runner, error) {
	if f == nil || robot == nil {
		return nil, errors.New("simulation needs a follower and a robot")
	}
	if f.Status() == follower.StatusNoPath {
		return nil, errors.New("follower has no path to simulate")
	}
	return &runner{follower: f, robot: robot, opts: opts.withDefaults()}, nil
}

func (r *runner) step() bool {
	if r.follower.IsFinished(r.opts.FinishTolerance) {
		r.result.Finished = true
		return true
	}
	if r.result.Steps >= r.opts.MaxSteps {
		return true
	}
	cmd := r.follower.Update(r.robot.Pose(), r.robot.State(), r.opts.Timestep)
	pose := r.robot.Apply(cmd, r.opts.Timestep)
	closest := r.follower.Path().ClosestTransform(pose.Position, path.DefaultSearchIncrement, 5)
	r.result.CrossTrack = append(r.result.CrossTrack, closest.Transform.Position.Distance(pose.Position))
	r.result.Steps++
	return false
}

func (r *runner) finish() (Result, error) {
	res := r.result
	res.Elapsed = r.robot.Elapsed()
	pose := r.robot.Pose()
	res.Final = Pose{X: pose.Position.X, Y: pose.Position.Y, Theta: pose.Rotation.Degrees()}
	if len(res.CrossTrack) == 0 {
		return res, nil
	}
	data := stats.Float64Data(res.CrossTrack)
	var err, e error
	res.MeanCrossTrack, e = stats.Mean(data)
	err = multierr.Append(err, e)
	res.MaxCrossTrack, e = stats.Max(data)
	err = multierr.Append(err, e)
	res.StdDevCrossTrack, e = stats.StandardDeviation(data)
	err = multierr.Append(err, e)
	res.P95CrossTrack, e = stats.Percentile(data, 95)
	err = multierr.Append(err, e)
	if err != nil {
		return res, errors.Wrap(err, "cannot summarize cross-track error")
	}
	return res, nil
}

// Run steps f and robot as fast as possible until the follower finishes or MaxSteps runs out.
func Run(f *follower.Follower, robot *Robot, opts Options) (Result, error) {
	r, err := newRunner(f, robot, opts)
	if err != nil {
		return Result{}, err
	}
	for !r.step() {
	}
	return r.finish()
}

// RunRealtime steps f and robot on a control loop ticking at 1/Timestep Hz on clk, which may be
// nil for the wall clock.
func RunRealtime(ctx context.Context, logger logging.Logger, f *follower.Follower, robot *Robot, opts Options,
	clk clock.Clock,
) (Result, error) {
	r, err := newRunner(f, robot, opts)
	if err != nil {
		return Result{}, err
	}
	loop, err := control.NewLoop(logger, 1/r.opts.Timestep, clk, func(context.Context, float64) (bool, error) {
		return r.step(), nil
	})
	if err != nil {
		return Result{}, err
	}
	if err := loop.Start(); err != nil {
		return Result{}, err
	}
	err = loop.Wait(ctx)
	loop.Stop()
	if err != nil {
		return Result{}, err
	}
	return r.finish()
}
