package gait

import (
	"errors"
	"fmt"
	"time"

	"github.com/gwillem/hexapod/pkg/robot"
)

// GroundedThreshold is the ground contact percent at or above which a foot
// bears weight.
const GroundedThreshold = 40.0

// ErrUnsupported is returned for a maneuver the robot's profile lacks.
var ErrUnsupported = errors.New("not supported by this profile")

// Direction is the direction of travel.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

func (d Direction) endpoint() robot.Endpoint {
	if d == Backward {
		return robot.EndpointBack
	}
	return robot.EndpointForward
}

// Pattern is a dance choreography.
type Pattern string

const (
	SideToSide  Pattern = "side_to_side"
	FrontToBack Pattern = "front_to_back"
)

// Options tunes maneuver timing.
type Options struct {
	// Settle is the pause after each locomotion step. Shorter values risk
	// instability given the servo slew rate.
	Settle time.Duration
	// Transition is the pause between the sub-moves of a height change.
	Transition time.Duration
	// Wakeup is the pause between the start-up poses.
	Wakeup time.Duration
}

// DefaultOptions returns the timings the robot was tuned with.
func DefaultOptions() Options {
	return Options{
		Settle:     500 * time.Millisecond,
		Transition: 500 * time.Millisecond,
		Wakeup:     time.Second,
	}
}

// Gait builds maneuver scripts for one robot. Scripts depend on the robot's
// recorded state, so build each one right before running it.
type Gait interface {
	Profile() robot.Profile

	Stand() Script
	Sit() Script
	Tall() Script
	// Posture moves a full profile robot to p through adjacent postures.
	Posture(p robot.Posture) (Script, error)
	// Height sets a reduced profile robot's height directly.
	Height(h robot.Height) (Script, error)

	Align() Script
	Spread() Script
	Center() Script

	// Rotate yaws the body in place using the center legs.
	Rotate(dir robot.Side) Script
	// Row shifts the body using the center legs.
	Row(dir Direction) Script
	// Walk takes one tripod step led by a tripod selector.
	Walk(lead robot.Selector, dir Direction) (Script, error)
	// Turn yaws the body toward dir by cycling the legs on side.
	Turn(dir, side robot.Side) Script

	DanceStart(row robot.Row) (Script, error)
	Dance(row robot.Row, pattern Pattern) (Script, error)
	DanceEnd(row robot.Row) (Script, error)

	Wakeup() Script
}

// New returns the gait for r's profile.
func New(r *robot.Robot, opts Options) (Gait, error) {
	switch p := r.Profile(); p {
	case robot.ProfileReduced:
		return &reduced{robot: r, opts: opts}, nil
	case robot.ProfileFull:
		return &full{robot: r, opts: opts}, nil
	default:
		return nil, fmt.Errorf("no gait for profile %v", p)
	}
}

func dancingRow(row robot.Row) error {
	if row != robot.Front && row != robot.Back {
		return fmt.Errorf("cannot dance with the %s legs", row)
	}
	return nil
}

func setLayout(l robot.Layout) func(*robot.Robot) {
	return func(r *robot.Robot) { r.SetLayout(l) }
}
