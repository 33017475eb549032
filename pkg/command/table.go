package command

import (
	"fmt"
	"strings"

	"github.com/gwillem/hexapod/pkg/gait"
	"github.com/gwillem/hexapod/pkg/robot"
)

// runner plays a command n times and returns the merged outcome.
type runner func(d *Dispatcher, n int) (gait.Outcome, error)

type command struct {
	name     string
	response func(n int) string
	run      runner
}

func times(format string) func(int) string {
	return func(n int) string { return fmt.Sprintf(format, n) }
}

func fixed(s string) func(int) string {
	return func(int) string { return s }
}

var aliases = map[string]string{
	"walk_forward":  "walk",
	"walk_backward": "walk_back",
}

func table() []command {
	return []command{
		{"walk", times("Walking Forward %d times"), walk(gait.Forward)},
		{"walk_back", times("Walking Backward %d times"), walk(gait.Backward)},
		{"turn_left", times("Turning Left %d times"), turn(robot.Left)},
		{"turn_right", times("Turning Right %d times"), turn(robot.Right)},
		{"rotate_left", times("Rotating Left %d times"), repeat(func(g gait.Gait) gait.Script { return g.Rotate(robot.Left) })},
		{"rotate_right", times("Rotating Right %d times"), repeat(func(g gait.Gait) gait.Script { return g.Rotate(robot.Right) })},
		{"row_forward", times("Rowing Forward %d times"), repeat(func(g gait.Gait) gait.Script { return g.Row(gait.Forward) })},
		{"row_back", times("Rowing Back %d times"), repeat(func(g gait.Gait) gait.Script { return g.Row(gait.Backward) })},
		{"front_dancing_1", times("Dancing Front Legs %d times"), dance(robot.Front, gait.SideToSide)},
		{"front_dancing_2", times("Dancing Front Legs %d times"), dance(robot.Front, gait.FrontToBack)},
		{"back_dancing_1", times("Dancing Back Legs %d times"), dance(robot.Back, gait.SideToSide)},
		{"back_dancing_2", times("Dancing Back Legs %d times"), dance(robot.Back, gait.FrontToBack)},
		{"sit", fixed("Sitting Down"), once(gait.Gait.Sit)},
		{"stand", fixed("Standing Up"), once(gait.Gait.Stand)},
		{"tall", fixed("Standing Tall"), once(gait.Gait.Tall)},
		{"center", fixed("Centering Legs"), once(gait.Gait.Center)},
		{"align", fixed("Aligning Legs"), once(gait.Gait.Align)},
		{"spread", fixed("Spreading Legs"), once(gait.Gait.Spread)},
		{"commands", nil, nil},
	}
}

func listResponse(names []string) string {
	return "Implemented Commands: " + strings.Join(names, ", ")
}

// walk alternates the lead tripod, right-left-right on even iterations.
func walk(dir gait.Direction) runner {
	return func(d *Dispatcher, n int) (gait.Outcome, error) {
		var total gait.Outcome
		for i := 0; i < n; i++ {
			lead := robot.SelectRightLeftRight
			if i%2 == 1 {
				lead = robot.SelectLeftRightLeft
			}
			s, err := d.gait.Walk(lead, dir)
			if err != nil {
				return total, err
			}
			total.Merge(d.run(s))
		}
		return total, nil
	}
}

// turn cycles the turning side on even iterations and the opposite side on
// odd ones; both yaw the same way.
func turn(dir robot.Side) runner {
	return func(d *Dispatcher, n int) (gait.Outcome, error) {
		var total gait.Outcome
		for i := 0; i < n; i++ {
			side := dir
			if i%2 == 1 {
				side = dir.Opposite()
			}
			total.Merge(d.run(d.gait.Turn(dir, side)))
		}
		return total, nil
	}
}

func repeat(build func(gait.Gait) gait.Script) runner {
	return func(d *Dispatcher, n int) (gait.Outcome, error) {
		var total gait.Outcome
		for i := 0; i < n; i++ {
			total.Merge(d.run(build(d.gait)))
		}
		return total, nil
	}
}

func once(build func(gait.Gait) gait.Script) runner {
	return func(d *Dispatcher, _ int) (gait.Outcome, error) {
		return d.run(build(d.gait)), nil
	}
}

// dance gets into position once, plays the pattern n times and restores.
func dance(row robot.Row, pattern gait.Pattern) runner {
	return func(d *Dispatcher, n int) (gait.Outcome, error) {
		var total gait.Outcome

		start, err := d.gait.DanceStart(row)
		if err != nil {
			return total, err
		}
		total.Merge(d.run(start))

		for i := 0; i < n; i++ {
			s, err := d.gait.Dance(row, pattern)
			if err != nil {
				return total, err
			}
			total.Merge(d.run(s))
		}

		end, err := d.gait.DanceEnd(row)
		if err != nil {
			return total, err
		}
		total.Merge(d.run(end))
		return total, nil
	}
}
