package gait

import (
	"fmt"
	"time"

	"github.com/gwillem/hexapod/pkg/robot"
)

// stance is the leg geometry shared by both profiles once the robot
// stands: which joint touches the ground, at what percent, and which joint
// swings a lifted leg vertically.
type stance struct {
	ground    robot.JointRole
	stand     float64
	swing     robot.JointRole
	swingRest float64
	settle    time.Duration
}

var centerRotate = At(robot.EndpointCenter)

func (s stance) walk(lead robot.Selector, dir Direction) ([]Step, error) {
	comp, ok := lead.Complement()
	if !ok {
		return nil, fmt.Errorf("walk lead must be a tripod, got %q", lead)
	}
	reach := At(dir.endpoint())

	return []Step{
		step("center rotates", s.settle, move(robot.SelectAll, robot.Rotate, centerRotate, StaggerFast)),
		step("lift lead", s.settle, move(lead, s.ground, Percent(0), StaggerFast)),
		step("reach lead", s.settle, move(lead, robot.Rotate, reach, StaggerFast)),
		step("lower lead", s.settle, move(lead, s.ground, Percent(GroundedThreshold), StaggerFast)),
		step("lift complement", s.settle, move(comp, s.ground, Percent(0), StaggerFast)),
		step("sweep lead", s.settle, move(lead, robot.Rotate, centerRotate, StaggerFast)),
		step("plant complement", s.settle, move(comp, s.ground, Percent(s.stand), StaggerFast)),
		step("restore", s.settle,
			move(robot.SelectAll, robot.Rotate, centerRotate, StaggerFast),
			move(robot.SelectAll, s.ground, Percent(s.stand), StaggerSlow)),
	}, nil
}

func (s stance) turn(dir, side robot.Side) []Step {
	legs := robot.SideSelector(side)
	// Legs reach against the yaw and push the body round on the sweep.
	reach := At(robot.EndpointBack)
	if dir != side {
		reach = At(robot.EndpointForward)
	}

	return []Step{
		step("lift "+string(side), s.settle, move(legs, s.ground, Percent(0), StaggerFast)),
		step("reach "+string(side), s.settle, move(legs, robot.Rotate, reach, StaggerFast)),
		step("plant "+string(side), s.settle, move(legs, s.ground, Percent(s.stand), StaggerFast)),
		step("sweep "+string(side), s.settle, move(legs, robot.Rotate, centerRotate, StaggerFast)),
	}
}

// centerPair lifts the center legs, sets their rotates with reach, plants,
// sweeps back and restores the stand height.
func (s stance) centerPair(left, right Target) []Step {
	lc := robot.LegSelector(robot.LeftCenter)
	rc := robot.LegSelector(robot.RightCenter)

	return []Step{
		step("lift center", s.settle, move(robot.SelectCenter, s.ground, Percent(0), StaggerFast)),
		step("reach center", s.settle,
			move(lc, robot.Rotate, left, StaggerFast),
			move(rc, robot.Rotate, right, StaggerFast)),
		step("plant center", s.settle, move(robot.SelectCenter, s.ground, Percent(s.stand), StaggerFast)),
		step("sweep center", s.settle, move(robot.SelectCenter, robot.Rotate, centerRotate, StaggerFast)),
		step("restore", s.settle, move(robot.SelectAll, s.ground, Percent(s.stand), StaggerSlow)),
	}
}

func (s stance) rotate(dir robot.Side) []Step {
	if dir == robot.Left {
		return s.centerPair(At(robot.EndpointForward), At(robot.EndpointBack))
	}
	return s.centerPair(At(robot.EndpointBack), At(robot.EndpointForward))
}

func (s stance) row(dir Direction) []Step {
	reach := At(dir.endpoint())
	return s.centerPair(reach, reach)
}

func (s stance) danceStart(row robot.Row) []Step {
	// Center legs lean toward the dancing row to carry its weight.
	lean := Percent(0)
	if row == robot.Back {
		lean = Percent(100)
	}
	dancers := robot.RowSelector(row)

	return []Step{
		step("lean center", s.settle, move(robot.SelectCenter, robot.Rotate, lean, StaggerFast)),
		step("support center", s.settle, move(robot.SelectCenter, s.ground, Percent(100), StaggerSlow)),
		step("lift "+string(row), s.settle, move(dancers, s.ground, Percent(0), StaggerFast)),
	}
}

func (s stance) dance(row robot.Row, pattern Pattern) ([]Step, bool) {
	dancers := robot.RowSelector(row)

	switch pattern {
	case SideToSide:
		return []Step{
			step("swing in", s.settle, move(dancers, robot.Rotate, Percent(25), StaggerFast)),
			step("swing out", s.settle, move(dancers, robot.Rotate, Percent(75), StaggerFast)),
		}, true
	case FrontToBack:
		return []Step{
			step("swing up", s.settle, move(dancers, s.swing, Percent(0), StaggerFast)),
			step("swing down", s.settle, move(dancers, s.swing, Percent(100), StaggerFast)),
		}, true
	}
	return nil, false
}

func (s stance) danceEnd(row robot.Row) []Step {
	dancers := robot.RowSelector(row)

	moves := []Move{move(dancers, robot.Rotate, centerRotate, StaggerFast)}
	if s.swing != s.ground {
		moves = append(moves, move(dancers, s.swing, Percent(s.swingRest), StaggerFast))
	}
	return []Step{
		step("settle "+string(row), s.settle, moves...),
		step("plant "+string(row), s.settle, move(dancers, s.ground, Percent(s.stand), StaggerFast)),
		step("center rotates", s.settle, move(robot.SelectCenter, robot.Rotate, centerRotate, StaggerFast)),
		step("restore", s.settle, move(robot.SelectAll, s.ground, Percent(s.stand), StaggerSlow)),
	}
}

func danceScript(s stance, row robot.Row, pattern Pattern) Script {
	name := fmt.Sprintf("dance %s %s", row, pattern)
	steps, ok := s.dance(row, pattern)
	if !ok {
		return Script{
			Name:  name,
			Skips: []Skip{{Step: "dance", Reason: fmt.Sprintf("pattern %q not implemented", pattern)}},
		}
	}
	return Script{Name: name, Steps: steps}
}
