// Package gait turns leg intents into timed joint writes: postures, tripod
// walking, turning, rotating and dancing.
package gait

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gwillem/hexapod/pkg/robot"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "gait",
})

// Event reports one successful joint write.
type Event struct {
	Maneuver string
	Step     string
	Joint    string
	Leg      robot.LegName
	Role     robot.JointRole
	Percent  float64
	Pulse    int
	// Elapsed is the time since the maneuver started.
	Elapsed time.Duration
}

// Skip is a joint move that did not happen. The maneuver carried on.
type Skip struct {
	Step   string
	Joint  string
	Reason string
	Err    error
}

func (s Skip) String() string {
	if s.Joint == "" {
		return fmt.Sprintf("%s: %s", s.Step, s.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", s.Step, s.Joint, s.Reason)
}

// Outcome is the result of a maneuver. A maneuver always runs to its end;
// moves it could not make are listed in Skips.
type Outcome struct {
	Maneuver string
	Skips    []Skip
	Writes   int
	Duration time.Duration
}

// Completed reports whether every move was made.
func (o Outcome) Completed() bool { return len(o.Skips) == 0 }

// Merge appends the writes, skips and time of other.
func (o *Outcome) Merge(other Outcome) {
	o.Skips = append(o.Skips, other.Skips...)
	o.Writes += other.Writes
	o.Duration += other.Duration
}

// Engine plays scripts on a robot. It is not safe for concurrent use.
type Engine struct {
	robot     *robot.Robot
	clock     Clock
	observers []func(Event)
	log       *logrus.Entry
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock the engine sleeps on.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithObserver adds a function called after every joint write.
func WithObserver(fn func(Event)) Option {
	return func(e *Engine) { e.observers = append(e.observers, fn) }
}

// NewEngine creates an engine for r.
func NewEngine(r *robot.Robot, opts ...Option) *Engine {
	e := &Engine{
		robot: r,
		clock: RealClock(),
		log:   log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run plays s to completion, blocking for its scripted duration.
func (e *Engine) Run(s Script) Outcome {
	start := e.clock.Now()
	out := Outcome{Maneuver: s.Name}
	logger := e.log.WithField("maneuver", s.Name)

	for _, sk := range s.Skips {
		logger.WithField("step", sk.Step).Warn(sk.Reason)
		out.Skips = append(out.Skips, sk)
	}

	for _, st := range s.Steps {
		for _, m := range st.Moves {
			e.move(&out, logger, start, st.Name, m)
		}
		e.clock.Sleep(st.Settle)
	}

	if s.Done != nil {
		s.Done(e.robot)
	}
	out.Duration = e.clock.Now().Sub(start)

	logger.WithFields(logrus.Fields{
		"writes":   out.Writes,
		"skips":    len(out.Skips),
		"duration": out.Duration,
	}).Debug("maneuver done")
	return out
}

func (e *Engine) move(out *Outcome, logger *logrus.Entry, start time.Time, stepName string, m Move) {
	legs, err := e.robot.Select(m.Legs)
	if err != nil {
		logger.WithError(err).Error("bad leg selection")
		out.Skips = append(out.Skips, Skip{Step: stepName, Reason: err.Error(), Err: err})
		return
	}

	for _, leg := range legs {
		j, ok := leg.Joint(m.Role)
		if !ok {
			name := robot.JointName(leg.Name(), m.Role)
			out.Skips = append(out.Skips, Skip{Step: stepName, Joint: name, Reason: "no such joint"})
			logger.WithField("joint", name).Warn("no such joint")
			continue
		}

		percent, err := e.write(j, m.Target)
		if err != nil {
			out.Skips = append(out.Skips, Skip{Step: stepName, Joint: j.Name(), Reason: err.Error(), Err: err})
			entry := logger.WithField("joint", j.Name()).WithError(err)
			if robot.Recoverable(err) {
				entry.Warn("skipping joint")
			} else {
				entry.Error("joint write failed")
			}
			continue
		}

		out.Writes++
		pulse, _ := j.Pulse()
		ev := Event{
			Maneuver: out.Maneuver,
			Step:     stepName,
			Joint:    j.Name(),
			Leg:      leg.Name(),
			Role:     m.Role,
			Percent:  percent,
			Pulse:    pulse,
			Elapsed:  e.clock.Now().Sub(start),
		}
		for _, fn := range e.observers {
			fn(ev)
		}
		e.clock.Sleep(m.Stagger)
	}
}

func (e *Engine) write(j *robot.Joint, t Target) (float64, error) {
	if t.Endpoint == "" {
		return t.Percent, j.SetPosition(t.Percent)
	}
	if err := j.MoveTo(t.Endpoint); err != nil {
		return 0, err
	}
	p, _ := j.Endpoint(t.Endpoint)
	return p, nil
}
