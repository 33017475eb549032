package gait

import (
	"fmt"

	"github.com/gwillem/hexapod/pkg/robot"
)

// reduced drives legs with a rotate and a single raise joint. Body height
// is one scalar; there is no geometry to align or spread.
type reduced struct {
	robot *robot.Robot
	opts  Options
}

func (g *reduced) Profile() robot.Profile { return robot.ProfileReduced }

func (g *reduced) Posture(robot.Posture) (Script, error) {
	return Script{}, fmt.Errorf("posture: %w", ErrUnsupported)
}

func (g *reduced) Height(h robot.Height) (Script, error) {
	switch h {
	case robot.HeightLowered, robot.HeightCentered, robot.HeightRaised:
	default:
		return Script{}, fmt.Errorf("unknown height %v", h)
	}
	return g.height("height "+h.String(), h), nil
}

func (g *reduced) height(name string, h robot.Height) Script {
	return Script{
		Name:  name,
		Steps: []Step{step("raise", g.opts.Transition, move(robot.SelectAll, robot.Raise, Percent(HeightPercent(h)), StaggerSlow))},
		Done:  func(r *robot.Robot) { r.SetHeight(h) },
	}
}

func (g *reduced) Stand() Script { return g.height("stand", robot.HeightCentered) }
func (g *reduced) Sit() Script   { return g.height("sit", robot.HeightLowered) }
func (g *reduced) Tall() Script  { return g.height("tall", robot.HeightRaised) }

func (g *reduced) Align() Script  { return Script{Name: "align"} }
func (g *reduced) Spread() Script { return Script{Name: "spread"} }
func (g *reduced) Center() Script { return Script{Name: "center"} }

func (g *reduced) stance(name string) (Script, stance) {
	prep := Script{Name: name}
	current := g.robot.Height()
	if current == robot.HeightLowered {
		prep = g.height(name, robot.HeightCentered)
		current = robot.HeightCentered
	}
	return prep, stance{
		ground: robot.Raise,
		stand:  HeightPercent(current),
		swing:  robot.Raise,
		settle: g.opts.Settle,
	}
}

func (g *reduced) locomotion(name string, steps func(stance) []Step) Script {
	prep, st := g.stance(name)
	return prep.Then(Script{Steps: steps(st), Done: setLayout(robot.LayoutCentered)})
}

func (g *reduced) Rotate(dir robot.Side) Script {
	return g.locomotion("rotate "+string(dir), func(s stance) []Step { return s.rotate(dir) })
}

func (g *reduced) Row(dir Direction) Script {
	return g.locomotion("row "+dir.String(), func(s stance) []Step { return s.row(dir) })
}

func (g *reduced) Walk(lead robot.Selector, dir Direction) (Script, error) {
	prep, st := g.stance(fmt.Sprintf("walk %s %s", dir, lead))
	steps, err := st.walk(lead, dir)
	if err != nil {
		return Script{}, err
	}
	return prep.Then(Script{Steps: steps, Done: setLayout(robot.LayoutCentered)}), nil
}

func (g *reduced) Turn(dir, side robot.Side) Script {
	return g.locomotion(fmt.Sprintf("turn %s on %s", dir, side), func(s stance) []Step { return s.turn(dir, side) })
}

func (g *reduced) DanceStart(row robot.Row) (Script, error) {
	if err := dancingRow(row); err != nil {
		return Script{}, err
	}
	return g.locomotion("dance start "+string(row), func(s stance) []Step { return s.danceStart(row) }), nil
}

func (g *reduced) Dance(row robot.Row, pattern Pattern) (Script, error) {
	if err := dancingRow(row); err != nil {
		return Script{}, err
	}
	_, st := g.stance("")
	return danceScript(st, row, pattern), nil
}

func (g *reduced) DanceEnd(row robot.Row) (Script, error) {
	if err := dancingRow(row); err != nil {
		return Script{}, err
	}
	return g.locomotion("dance end "+string(row), func(s stance) []Step { return s.danceEnd(row) }), nil
}

// Wakeup is the start-up pose: legs tucked and swung back, raised, lowered.
func (g *reduced) Wakeup() Script {
	d := g.opts.Wakeup
	return Script{
		Name: "wakeup",
		Steps: []Step{
			step("tuck", d,
				move(robot.SelectAll, robot.Raise, Percent(0), StaggerFast),
				move(robot.SelectAll, robot.Rotate, Percent(100), StaggerFast)),
			step("raise", d, move(robot.SelectAll, robot.Raise, Percent(100), StaggerSlow)),
			step("lower", 0, move(robot.SelectAll, robot.Raise, Percent(0), StaggerSlow)),
		},
		Done: func(r *robot.Robot) {
			r.SetHeight(robot.HeightLowered)
			r.SetLayout(robot.LayoutUnknown)
		},
	}
}
