// Package cli contains the motioncore command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// Flags.
const (
	configFlag   = "config"
	debugFlag    = "debug"
	everyFlag    = "every"
	timestepFlag = "timestep"
	realtimeFlag = "realtime"
	adaptFlag    = "adapt"
	indentFlag   = "indent"
)

var app = &cli.App{
	Name:            "motioncore",
	Usage:           "plan and simulate mobile robot motion",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "trajectory",
			Usage:     "generate a time-parameterized trajectory along the configured waypoints",
			UsageText: "motioncore trajectory --config <FILE> [--every N]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     configFlag,
					Aliases:  []string{"c"},
					Usage:    "load configuration from `FILE`",
					Required: true,
				},
				&cli.IntFlag{
					Name:  everyFlag,
					Usage: "print every Nth sample",
					Value: 10,
				},
			},
			Action: TrajectoryAction,
		},
		{
			Name:      "profile",
			Usage:     "plan the configured single-axis motion profile",
			UsageText: "motioncore profile --config <FILE> [--timestep SECONDS]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     configFlag,
					Aliases:  []string{"c"},
					Usage:    "load configuration from `FILE`",
					Required: true,
				},
				&cli.Float64Flag{
					Name:  timestepFlag,
					Usage: "time between printed samples in seconds",
					Value: 0.1,
				},
			},
			Action: ProfileAction,
		},
		{
			Name:      "follow",
			Usage:     "simulate the path follower driving the configured route",
			UsageText: "motioncore follow --config <FILE> [--realtime] [--adapt]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     configFlag,
					Aliases:  []string{"c"},
					Usage:    "load configuration from `FILE`",
					Required: true,
				},
				&cli.BoolFlag{
					Name:  realtimeFlag,
					Usage: "step the simulation on a wall clock control loop",
				},
				&cli.BoolFlag{
					Name:  adaptFlag,
					Usage: "splice the path onto the robot's start pose",
				},
			},
			Action: FollowAction,
		},
		{
			Name:  "schema",
			Usage: "print the JSON schema of the configuration file",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  indentFlag,
					Usage: "indent the output",
					Value: true,
				},
			},
			Action: SchemaAction,
		},
		{
			Name:   "version",
			Usage:  "print version info for this program",
			Action: VersionAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
