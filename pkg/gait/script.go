package gait

import (
	"time"

	"github.com/gwillem/hexapod/pkg/robot"
)

// Delay between consecutive joint writes of a move, bounding the current
// drawn from the shared power rail.
const (
	StaggerFast = 10 * time.Millisecond
	StaggerSlow = 100 * time.Millisecond
)

// Target is where a move sends a joint: a named endpoint when Endpoint is
// set, otherwise Percent.
type Target struct {
	Percent  float64
	Endpoint robot.Endpoint
}

// Percent targets a raw percent of the calibrated range.
func Percent(p float64) Target { return Target{Percent: p} }

// At targets a calibrated endpoint.
func At(e robot.Endpoint) Target { return Target{Endpoint: e} }

func (t Target) String() string {
	if t.Endpoint != "" {
		return string(t.Endpoint)
	}
	return formatPercent(t.Percent)
}

// Move writes one joint role on every leg of a selection, in canonical
// order, sleeping Stagger after each write.
type Move struct {
	Legs    robot.Selector
	Role    robot.JointRole
	Target  Target
	Stagger time.Duration
}

// Step is a group of moves followed by a settle delay.
type Step struct {
	Name   string
	Moves  []Move
	Settle time.Duration
}

// Script is a maneuver as data: an ordered list of steps.
type Script struct {
	Name  string
	Steps []Step
	// Skips are reported by the engine without running anything, e.g. for a
	// pattern that has no choreography.
	Skips []Skip
	// Done records the state the maneuver leaves the robot in. It runs after
	// the last step.
	Done func(r *robot.Robot)
}

// Then appends the steps of other and chains its Done after this one.
func (s Script) Then(other Script) Script {
	out := Script{
		Name:  s.Name,
		Steps: append(append([]Step(nil), s.Steps...), other.Steps...),
		Skips: append(append([]Skip(nil), s.Skips...), other.Skips...),
	}
	first, second := s.Done, other.Done
	if first != nil || second != nil {
		out.Done = func(r *robot.Robot) {
			if first != nil {
				first(r)
			}
			if second != nil {
				second(r)
			}
		}
	}
	return out
}

// Writes returns the number of joint writes the script issues, assuming
// every move succeeds.
func (s Script) Writes() int {
	n := 0
	for _, st := range s.Steps {
		for _, m := range st.Moves {
			legs, err := m.Legs.Legs()
			if err == nil {
				n += len(legs)
			}
		}
	}
	return n
}

// Duration returns the scripted time the maneuver blocks for, assuming every
// move succeeds.
func (s Script) Duration() time.Duration {
	var d time.Duration
	for _, st := range s.Steps {
		for _, m := range st.Moves {
			legs, err := m.Legs.Legs()
			if err == nil {
				d += time.Duration(len(legs)) * m.Stagger
			}
		}
		d += st.Settle
	}
	return d
}

func move(sel robot.Selector, role robot.JointRole, t Target, stagger time.Duration) Move {
	return Move{Legs: sel, Role: role, Target: t, Stagger: stagger}
}

func step(name string, settle time.Duration, moves ...Move) Step {
	return Step{Name: name, Moves: moves, Settle: settle}
}
