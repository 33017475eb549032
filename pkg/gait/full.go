package gait

import (
	"fmt"

	"github.com/gwillem/hexapod/pkg/robot"
)

// full drives legs with rotate, upper and lower joints. Body height follows
// the posture state machine.
type full struct {
	robot *robot.Robot
	opts  Options
}

func (g *full) Profile() robot.Profile { return robot.ProfileFull }

func (g *full) Posture(p robot.Posture) (Script, error) {
	path, err := Path(g.robot.Posture(), p)
	if err != nil {
		return Script{}, err
	}
	s := Script{
		Name: "posture " + p.String(),
		Done: func(r *robot.Robot) { r.SetPosture(p) },
	}
	for _, t := range path {
		s.Steps = append(s.Steps, t.Steps(g.opts.Transition)...)
	}
	return s, nil
}

func (g *full) posture(name string, p robot.Posture) Script {
	s, err := g.Posture(p)
	if err != nil {
		// Recorded postures always come from the table.
		panic(err)
	}
	s.Name = name
	return s
}

func (g *full) Height(robot.Height) (Script, error) {
	return Script{}, fmt.Errorf("height: %w", ErrUnsupported)
}

func (g *full) Stand() Script { return g.posture("stand", robot.PostureShort) }
func (g *full) Sit() Script   { return g.posture("sit", robot.PostureResting) }
func (g *full) Tall() Script  { return g.posture("tall", robot.PostureTall) }

func (g *full) Align() Script {
	return Script{
		Name:  "align",
		Steps: []Step{step("align rotates", 0, move(robot.SelectAll, robot.Rotate, Percent(50), StaggerFast))},
		Done:  setLayout(robot.LayoutAligned),
	}
}

func (g *full) Spread() Script {
	return Script{
		Name: "spread",
		Steps: []Step{step("spread rotates", 0,
			move(robot.SelectFront, robot.Rotate, At(robot.EndpointForward), StaggerFast),
			move(robot.SelectCenter, robot.Rotate, At(robot.EndpointCenter), StaggerFast),
			move(robot.SelectBack, robot.Rotate, At(robot.EndpointBack), StaggerFast),
		)},
		Done: setLayout(robot.LayoutSpread),
	}
}

func (g *full) Center() Script {
	return Script{
		Name:  "center",
		Steps: []Step{step("center rotates", 0, move(robot.SelectAll, robot.Rotate, centerRotate, StaggerFast))},
		Done:  setLayout(robot.LayoutCentered),
	}
}

// stance stands the robot up first when it is resting, so locomotion always
// starts with weight on every foot.
func (g *full) stance(name string) (Script, stance) {
	prep := Script{Name: name}
	current := g.robot.Posture()
	if current == robot.PostureResting {
		prep = g.posture(name, robot.PostureShort)
		current = robot.PostureShort
	}
	level, _ := PostureLevel(current)
	return prep, stance{
		ground:    robot.Lower,
		stand:     level.Lower,
		swing:     robot.Upper,
		swingRest: level.Upper,
		settle:    g.opts.Settle,
	}
}

func (g *full) locomotion(name string, steps func(stance) []Step) Script {
	prep, st := g.stance(name)
	return prep.Then(Script{Steps: steps(st), Done: setLayout(robot.LayoutCentered)})
}

func (g *full) Rotate(dir robot.Side) Script {
	return g.locomotion("rotate "+string(dir), func(s stance) []Step { return s.rotate(dir) })
}

func (g *full) Row(dir Direction) Script {
	return g.locomotion("row "+dir.String(), func(s stance) []Step { return s.row(dir) })
}

func (g *full) Walk(lead robot.Selector, dir Direction) (Script, error) {
	prep, st := g.stance(fmt.Sprintf("walk %s %s", dir, lead))
	steps, err := st.walk(lead, dir)
	if err != nil {
		return Script{}, err
	}
	return prep.Then(Script{Steps: steps, Done: setLayout(robot.LayoutCentered)}), nil
}

func (g *full) Turn(dir, side robot.Side) Script {
	return g.locomotion(fmt.Sprintf("turn %s on %s", dir, side), func(s stance) []Step { return s.turn(dir, side) })
}

func (g *full) DanceStart(row robot.Row) (Script, error) {
	if err := dancingRow(row); err != nil {
		return Script{}, err
	}
	return g.locomotion("dance start "+string(row), func(s stance) []Step { return s.danceStart(row) }), nil
}

func (g *full) Dance(row robot.Row, pattern Pattern) (Script, error) {
	if err := dancingRow(row); err != nil {
		return Script{}, err
	}
	_, st := g.stance("")
	return danceScript(st, row, pattern), nil
}

func (g *full) DanceEnd(row robot.Row) (Script, error) {
	if err := dancingRow(row); err != nil {
		return Script{}, err
	}
	return g.locomotion("dance end "+string(row), func(s stance) []Step { return s.danceEnd(row) }), nil
}

// Wakeup rises to short and sits back down.
func (g *full) Wakeup() Script {
	up := g.posture("wakeup", robot.PostureShort)
	var down Script
	for _, t := range mustPath(robot.PostureShort, robot.PostureResting) {
		down.Steps = append(down.Steps, t.Steps(g.opts.Wakeup)...)
	}
	down.Done = func(r *robot.Robot) { r.SetPosture(robot.PostureResting) }
	return up.Then(down)
}

func mustPath(from, to robot.Posture) []Transition {
	path, err := Path(from, to)
	if err != nil {
		panic(err)
	}
	return path
}
