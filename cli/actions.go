package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/motioncore/config"
	"go.viam.com/motioncore/follower"
	"go.viam.com/motioncore/logging"
	"go.viam.com/motioncore/motionprofile"
	"go.viam.com/motioncore/sim"
	"go.viam.com/motioncore/trajectory"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, "\033[1;33mWarning:\033[0m "+format+"\n", a...)
}

func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewLogger("motioncore")
	if c.Bool(debugFlag) {
		logger.SetLevel(logging.DEBUG)
	}
	return logger
}

// loadConfig reads the config named by the config flag and applies its log levels once the
// subloggers it names have been created.
func loadConfig(c *cli.Context, logger logging.Logger, subloggers ...string) (*config.Config, map[string]logging.Logger, error) {
	cfg, err := config.Read(c.Path(configFlag))
	if err != nil {
		return nil, nil, err
	}
	loggers := make(map[string]logging.Logger, len(subloggers))
	for _, name := range subloggers {
		loggers[name] = logger.Sublogger(name)
	}
	if err := cfg.ApplyLogConfig(); err != nil {
		return nil, nil, err
	}
	return cfg, loggers, nil
}

// TrajectoryAction is the corresponding action for 'trajectory'.
func TrajectoryAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg, loggers, err := loadConfig(c, logger, "trajectory")
	if err != nil {
		return err
	}
	every := c.Int(everyFlag)
	if every < 1 {
		return errors.Errorf("--%s must be at least 1, got %d", everyFlag, every)
	}
	p, err := cfg.Path()
	if err != nil {
		return err
	}
	gen, err := trajectory.NewGenerator(loggers["trajectory"], cfg.Trajectory.Limits)
	if err != nil {
		return err
	}
	traj, err := cfg.Trajectory.Generate(gen, p)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", trajectoryTable(traj, every))
	printf(c.App.Writer, "%s", traj.Summary())
	return nil
}

func trajectoryTable(traj *trajectory.Trajectory, every int) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Time (s)", "Distance", "Linear", "Angular", "Curvature"})
	last := traj.Len() - 1
	for i := 0; i <= last; i++ {
		if i%every != 0 && i != last {
			continue
		}
		t.AppendRow(table.Row{
			i,
			fmt.Sprintf("%.3f", traj.Times[i]),
			fmt.Sprintf("%.3f", traj.Distances[i]),
			fmt.Sprintf("%.3f", traj.LinearVelocities[i]),
			fmt.Sprintf("%.3f", traj.AngularVelocities[i]),
			fmt.Sprintf("%.4f", traj.Curvatures[i]),
		})
	}
	return t.Render()
}

// ProfileAction is the corresponding action for 'profile'.
func ProfileAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg, _, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	if cfg.Profile == nil {
		return errors.Errorf("config %q has no profile", c.Path(configFlag))
	}
	step := c.Float64(timestepFlag)
	if !(step > 0) {
		return errors.Errorf("--%s must be positive, got %v", timestepFlag, step)
	}
	profile, err := cfg.Profile.Build()
	if err != nil {
		return err
	}
	if profile.Overridden() {
		warningf(c.App.ErrWriter, "end state is unreachable within the constraints, applied %q", cfg.Profile.Override)
	}
	printf(c.App.Writer, "%s", profileTable(profile, step))
	printf(c.App.Writer, "%s", profile)
	return nil
}

func profileTable(profile *motionprofile.MotionProfile, step float64) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Time (s)", "Position", "Velocity", "Acceleration"})
	row := func(s motionprofile.MotionState) {
		t.AppendRow(table.Row{
			fmt.Sprintf("%.3f", s.Time),
			fmt.Sprintf("%.4f", s.Position),
			fmt.Sprintf("%.4f", s.Velocity),
			fmt.Sprintf("%.4f", s.Acceleration),
		})
	}
	duration := profile.Duration()
	for i := 0; float64(i)*step < duration; i++ {
		row(profile.StateAt(float64(i) * step))
	}
	row(profile.StateAt(duration))
	return t.Render()
}

// FollowAction is the corresponding action for 'follow'.
func FollowAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg, loggers, err := loadConfig(c, logger, "follower", "sim")
	if err != nil {
		return err
	}
	fcfg, err := cfg.FollowerConfig()
	if err != nil {
		return err
	}
	f, err := follower.NewFollower(loggers["follower"], fcfg)
	if err != nil {
		return err
	}
	p, err := cfg.Path()
	if err != nil {
		return err
	}
	f.SetPath(p, c.Bool(adaptFlag))

	start := p.Start()
	if cfg.Simulation.Start != nil {
		start = cfg.Simulation.Start.Transform()
	} else if fcfg.Reversed {
		start = start.Reversed()
	}
	robot := sim.NewRobot(start, fcfg.TrackWidth)
	robot.WheelLimits = motionprofile.SafeVelocityController{
		MaxAcceleration: cfg.Simulation.WheelMaxAcceleration,
		MaxDeceleration: cfg.Simulation.WheelMaxDeceleration,
	}
	opts := sim.Options{
		Timestep:        cfg.Simulation.Timestep,
		MaxSteps:        cfg.Simulation.MaxSteps,
		FinishTolerance: cfg.Simulation.FinishTolerance,
	}

	var res sim.Result
	if c.Bool(realtimeFlag) || cfg.Simulation.Realtime {
		res, err = sim.RunRealtime(c.Context, loggers["sim"], f, robot, opts, nil)
	} else {
		res, err = sim.Run(f, robot, opts)
	}
	if err != nil {
		return err
	}
	if !res.Finished {
		warningf(c.App.ErrWriter, "follower did not finish within %d steps", res.Steps)
	}
	printf(c.App.Writer, "%s", resultTable(fcfg.Strategy, res))
	return nil
}

func resultTable(strategy follower.StrategyName, res sim.Result) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Strategy", strategy},
		{"Finished", res.Finished},
		{"Steps", res.Steps},
		{"Time (s)", fmt.Sprintf("%.3f", res.Elapsed)},
		{"Final pose", fmt.Sprintf("X:%.3f, Y:%.3f, Theta:%.1f", res.Final.X, res.Final.Y, res.Final.Theta)},
		{"Mean cross-track", fmt.Sprintf("%.4f", res.MeanCrossTrack)},
		{"Std dev cross-track", fmt.Sprintf("%.4f", res.StdDevCrossTrack)},
		{"P95 cross-track", fmt.Sprintf("%.4f", res.P95CrossTrack)},
		{"Max cross-track", fmt.Sprintf("%.4f", res.MaxCrossTrack)},
	})
	return t.Render()
}

// SchemaAction is the corresponding action for 'schema'.
func SchemaAction(c *cli.Context) error {
	var (
		out []byte
		err error
	)
	if c.Bool(indentFlag) {
		out, err = json.MarshalIndent(config.Schema(), "", "  ")
	} else {
		out, err = json.Marshal(config.Schema())
	}
	if err != nil {
		return errors.Wrap(err, "cannot encode config schema")
	}
	printf(c.App.Writer, "%s", out)
	return nil
}

// VersionAction is the corresponding action for 'version'.
func VersionAction(c *cli.Context) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("error reading build info")
	}
	if c.Bool(debugFlag) {
		printf(c.App.Writer, "%s", info.String())
	}
	settings := make(map[string]string, len(info.Settings))
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	version := "?"
	if rev, ok := settings["vcs.revision"]; ok && len(rev) >= 8 {
		version = rev[:8]
		if settings["vcs.modified"] == "true" {
			version += "+"
		}
	}
	printf(c.App.Writer, "version %s, go %s", version, info.GoVersion)
	return nil
}
