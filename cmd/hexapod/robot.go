package main

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gwillem/hexapod/pkg/command"
	"github.com/gwillem/hexapod/pkg/gait"
	"github.com/gwillem/hexapod/pkg/metric"
	"github.com/gwillem/hexapod/pkg/robot"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "main",
})

func setupLogging(level string, json bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// RobotOptions are shared by every command that drives the robot.
type RobotOptions struct {
	Config string        `short:"c" long:"config" env:"HEXAPOD_CONFIG" default:"hexapod.yaml" description:"Calibration file"`
	DryRun bool          `long:"dry-run" description:"Log servo writes instead of driving hardware"`
	Settle time.Duration `long:"settle" default:"500ms" description:"Pause after each locomotion step"`
}

func (o RobotOptions) open() (*robot.Robot, error) {
	cfg, err := robot.LoadConfigFrom(o.Config)
	if err != nil {
		return nil, err
	}
	opener := robot.OpenBoard
	if o.DryRun {
		opener = robot.DryRun
	}
	return robot.New(cfg, opener)
}

// dispatcher wires the gait, engine and dispatcher for r. m may be nil.
func (o RobotOptions) dispatcher(r *robot.Robot, m *metric.Metrics) (*command.Dispatcher, error) {
	gopts := gait.DefaultOptions()
	gopts.Settle = o.Settle
	g, err := gait.New(r, gopts)
	if err != nil {
		return nil, err
	}

	var engineOpts []gait.Option
	if m != nil {
		engineOpts = append(engineOpts, gait.WithObserver(func(ev gait.Event) {
			m.RecordWrite(ev.Joint)
		}))
	}
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		engineOpts = append(engineOpts, gait.WithObserver(func(ev gait.Event) {
			log.WithFields(logrus.Fields{
				"step":    ev.Step,
				"joint":   ev.Joint,
				"percent": ev.Percent,
				"pulse":   ev.Pulse,
			}).Trace("write")
		}))
	}
	e := gait.NewEngine(r, engineOpts...)

	var copts []command.Option
	if m != nil {
		copts = append(copts, command.WithMetrics(m))
	}
	return command.New(g, e, copts...), nil
}
