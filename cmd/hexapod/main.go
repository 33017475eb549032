package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	LogLevel string `long:"log-level" default:"info" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`
	LogJSON  bool   `long:"log-json" description:"Log as JSON"`

	Serve     ServeCommand     `command:"serve" description:"Run the command server (TCP, optional WebSocket/metrics and NATS)"`
	Run       RunCommand       `command:"run" description:"Run a single command on the local robot"`
	Client    ClientCommand    `command:"client" description:"Send commands to a running server"`
	Calibrate CalibrateCommand `command:"calibrate" alias:"cal" description:"Tune servo ranges and endpoints interactively"`
	Scan      ScanCommand      `command:"scan" description:"List serial ports and scan for Feetech servos"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "hexapod - gait controller for a six-legged robot"
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if err := setupLogging(opts.LogLevel, opts.LogJSON); err != nil {
			return err
		}
		return cmd.Execute(args)
	}

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
