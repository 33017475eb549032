package command

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gwillem/hexapod/pkg/gait"
	"github.com/gwillem/hexapod/pkg/metric"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "command",
})

// Result is the outcome of one request.
type Result struct {
	Request  Request
	Response string
	Outcome  gait.Outcome
	Err      error
}

// Dispatcher runs commands one at a time. It is safe for concurrent use:
// every transport funnels into the same mutex around the robot.
type Dispatcher struct {
	mu      sync.Mutex
	gait    gait.Gait
	engine  *gait.Engine
	metrics *metric.Metrics

	commands map[string]command
	names    []string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records commands and maneuvers in m.
func WithMetrics(m *metric.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New creates a dispatcher playing g's scripts on e.
func New(g gait.Gait, e *gait.Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		gait:     g,
		engine:   e,
		commands: make(map[string]command),
	}
	for _, c := range table() {
		d.commands[c.name] = c
		d.names = append(d.names, c.name)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch parses and executes one command line and returns the response
// text. It never fails: errors become fixed responses.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) string {
	req, err := ParseRequest(line)
	if err != nil {
		log.WithError(err).Warn("rejected request")
		d.recordCommand("malformed", metric.StatusMalformed)
		return ResponseMalformed
	}
	return d.Execute(ctx, req).Response
}

// Execute runs a parsed request to completion. It blocks for the scripted
// duration of the maneuver and for any maneuver already running.
func (d *Dispatcher) Execute(ctx context.Context, req Request) Result {
	res := Result{Request: req}
	logger := log.WithFields(logrus.Fields{
		"command":   req.Command,
		"iteration": req.Iteration,
	})

	name := req.Command
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	cmd, ok := d.commands[name]
	if !ok {
		logger.Info("command not found")
		d.recordCommand("unknown", metric.StatusUnknown)
		res.Response = ResponseNotFound
		res.Err = ErrUnknownCommand
		return res
	}
	if req.Iteration < 1 {
		d.recordCommand(name, metric.StatusMalformed)
		res.Response = ResponseMalformed
		res.Err = &MalformedRequestError{Line: req.String(), Reason: "iteration must be at least 1"}
		return res
	}
	if name == "commands" {
		d.recordCommand(name, metric.StatusOK)
		res.Response = listResponse(d.names)
		return res
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		logger.WithError(err).Warn("request cancelled before start")
		d.recordCommand(name, metric.StatusCancelled)
		res.Response = ResponseCancelled
		res.Err = err
		return res
	}

	logger.Info(cmd.response(req.Iteration))
	out, err := cmd.run(d, req.Iteration)
	out.Maneuver = name
	res.Outcome = out

	if err != nil {
		logger.WithError(err).Error("command failed")
		d.recordCommand(name, metric.StatusError)
		res.Response = "ERROR: " + err.Error()
		res.Err = err
		return res
	}

	status := metric.StatusOK
	if !out.Completed() {
		status = metric.StatusSkipped
		logger.WithField("skips", len(out.Skips)).Warn("completed with skipped moves")
	}
	d.recordCommand(name, status)
	if d.metrics != nil {
		d.metrics.RecordSkips(name, len(out.Skips))
	}

	logger.WithFields(logrus.Fields{
		"writes":   out.Writes,
		"duration": out.Duration,
	}).Debug("command done")
	res.Response = cmd.response(req.Iteration)
	return res
}

// Wakeup plays the start-up pose under the dispatcher lock.
func (d *Dispatcher) Wakeup(ctx context.Context) (gait.Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return gait.Outcome{}, err
	}
	return d.run(d.gait.Wakeup()), nil
}

// run plays one script. Callers hold d.mu.
func (d *Dispatcher) run(s gait.Script) gait.Outcome {
	out := d.engine.Run(s)
	if d.metrics != nil {
		d.metrics.RecordManeuver(s.Name, out.Duration)
	}
	return out
}

func (d *Dispatcher) recordCommand(name, status string) {
	if d.metrics != nil {
		d.metrics.RecordCommand(name, status)
	}
}
