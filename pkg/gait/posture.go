package gait

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gwillem/hexapod/pkg/robot"
)

// Level is the (upper, lower) percent pair every leg holds in a posture.
// Lower is the ground contact joint: 0 is tucked, 100 fully extended.
type Level struct {
	Upper float64
	Lower float64
}

var postures = map[robot.Posture]Level{
	robot.PostureResting: {Upper: 0, Lower: 0},
	robot.PostureShort:   {Upper: 50, Lower: 50},
	robot.PostureSquare:  {Upper: 50, Lower: 75},
	robot.PostureTall:    {Upper: 100, Lower: 100},
}

// PostureLevel returns the joint targets of p.
func PostureLevel(p robot.Posture) (Level, bool) {
	l, ok := postures[p]
	return l, ok
}

// ParsePosture parses a posture name.
func ParsePosture(s string) (robot.Posture, error) {
	for p := range postures {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown posture %q", s)
}

// Transition is a move between two adjacent postures.
type Transition struct {
	From robot.Posture
	To   robot.Posture
}

// NewTransition returns the transition from -> to. Only adjacent postures
// are connected.
func NewTransition(from, to robot.Posture) (Transition, error) {
	if _, ok := postures[from]; !ok {
		return Transition{}, fmt.Errorf("unknown posture %v", from)
	}
	if _, ok := postures[to]; !ok {
		return Transition{}, fmt.Errorf("unknown posture %v", to)
	}
	if d := int(to) - int(from); d != 1 && d != -1 {
		return Transition{}, fmt.Errorf("no transition from %s to %s", from, to)
	}
	return Transition{From: from, To: to}, nil
}

// Rising reports whether the transition raises the body.
func (t Transition) Rising() bool { return t.To > t.From }

func (t Transition) String() string {
	return t.From.String() + "->" + t.To.String()
}

// Path returns the chain of adjacent transitions leading from one posture to
// another. It is empty when from == to.
func Path(from, to robot.Posture) ([]Transition, error) {
	if _, ok := postures[from]; !ok {
		return nil, fmt.Errorf("unknown posture %v", from)
	}
	if _, ok := postures[to]; !ok {
		return nil, fmt.Errorf("unknown posture %v", to)
	}

	var path []Transition
	dir := 1
	if to < from {
		dir = -1
	}
	for p := from; p != to; p += robot.Posture(dir) {
		t, err := NewTransition(p, p+robot.Posture(dir))
		if err != nil {
			return nil, err
		}
		path = append(path, t)
	}
	return path, nil
}

// Steps returns the two sub-moves of the transition. Rising moves the uppers
// before the lowers, descending the reverse, so no leg over-extends.
func (t Transition) Steps(settle time.Duration) []Step {
	level := postures[t.To]
	uppers := step(t.String()+" uppers", settle,
		move(robot.SelectAll, robot.Upper, Percent(level.Upper), StaggerFast))
	lowers := step(t.String()+" lowers", settle,
		move(robot.SelectAll, robot.Lower, Percent(level.Lower), StaggerSlow))

	if t.Rising() {
		return []Step{uppers, lowers}
	}
	return []Step{lowers, uppers}
}

// ParseHeight parses a reduced profile height name.
func ParseHeight(s string) (robot.Height, error) {
	for _, h := range []robot.Height{robot.HeightLowered, robot.HeightCentered, robot.HeightRaised} {
		if h.String() == s {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown height %q", s)
}

// HeightPercent returns the raise percent of a reduced profile height.
func HeightPercent(h robot.Height) float64 {
	switch h {
	case robot.HeightCentered:
		return 50
	case robot.HeightRaised:
		return 100
	}
	return 0
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}
