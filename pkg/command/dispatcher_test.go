package command

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/hexapod/pkg/gait"
	"github.com/gwillem/hexapod/pkg/metric"
	"github.com/gwillem/hexapod/pkg/robot"
	"github.com/gwillem/hexapod/pkg/robot/robottest"
)

type rig struct {
	*robottest.Fixture
	dispatcher *Dispatcher
	metrics    *metric.Metrics
	events     []gait.Event
}

func newRig(t *testing.T, cfg *robot.Config) *rig {
	t.Helper()

	f := robottest.New(t, cfg)
	g, err := gait.New(f.Robot, gait.DefaultOptions())
	require.NoError(t, err)

	r := &rig{Fixture: f, metrics: metric.NewMetrics()}
	e := gait.NewEngine(f.Robot,
		gait.WithClock(gait.NewSimClock()),
		gait.WithObserver(func(ev gait.Event) { r.events = append(r.events, ev) }),
	)
	r.dispatcher = New(g, e, WithMetrics(r.metrics))
	return r
}

// firstLegs returns the first leg written by each run of the named step.
func (r *rig) firstLegs(stepName string) []robot.LegName {
	var legs []robot.LegName
	prev := ""
	for _, ev := range r.events {
		if ev.Step == stepName && prev != stepName {
			legs = append(legs, ev.Leg)
		}
		prev = ev.Step
	}
	return legs
}

func TestDispatch_WalkAlternatesLead(t *testing.T) {
	for _, cfg := range []*robot.Config{robottest.ReducedConfig(), robottest.FullConfig()} {
		r := newRig(t, cfg)

		resp := r.dispatcher.Dispatch(context.Background(), "walk 3")
		assert.Equal(t, "Walking Forward 3 times", resp)

		assert.Equal(t, []robot.LegName{
			robot.RightFront, robot.LeftFront, robot.RightFront,
		}, r.firstLegs("lift lead"))
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	r := newRig(t, robottest.FullConfig())

	res := r.dispatcher.Execute(context.Background(), Request{Command: "bogus_token", Iteration: 1})
	assert.Equal(t, "Command not found!", res.Response)
	assert.ErrorIs(t, res.Err, ErrUnknownCommand)
	assert.Zero(t, r.WriteCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.CommandsTotal.WithLabelValues("unknown", metric.StatusUnknown)))

	assert.Equal(t, ResponseNotFound, r.dispatcher.Dispatch(context.Background(), "Walk"))
}

func TestDispatch_TurnAlternatesSide(t *testing.T) {
	r := newRig(t, robottest.ReducedConfig())

	assert.Equal(t, "Turning Left 2 times", r.dispatcher.Dispatch(context.Background(), "turn_left 2"))
	assert.Equal(t, []robot.LegName{robot.LeftFront}, r.firstLegs("lift left"))
	assert.Equal(t, []robot.LegName{robot.RightFront}, r.firstLegs("lift right"))

	var order []string
	for _, ev := range r.events {
		if strings.HasPrefix(ev.Step, "lift ") && (len(order) == 0 || order[len(order)-1] != ev.Step) {
			order = append(order, ev.Step)
		}
	}
	assert.Equal(t, []string{"lift left", "lift right"}, order)
}

func TestDispatch_Malformed(t *testing.T) {
	r := newRig(t, robottest.ReducedConfig())

	for _, line := range []string{"", "walk 1 2", "walk x", "walk 0"} {
		assert.Equal(t, "ERROR: invalid command format", r.dispatcher.Dispatch(context.Background(), line), "%q", line)
	}
	assert.Zero(t, r.WriteCount())
}

func TestDispatch_Responses(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"walk_back 2", "Walking Backward 2 times"},
		{"walk_forward", "Walking Forward 1 times"},
		{"walk_backward 4", "Walking Backward 4 times"},
		{"turn_right", "Turning Right 1 times"},
		{"rotate_left 2", "Rotating Left 2 times"},
		{"rotate_right", "Rotating Right 1 times"},
		{"row_forward", "Rowing Forward 1 times"},
		{"row_back 3", "Rowing Back 3 times"},
		{"front_dancing_1 2", "Dancing Front Legs 2 times"},
		{"front_dancing_2", "Dancing Front Legs 1 times"},
		{"back_dancing_1", "Dancing Back Legs 1 times"},
		{"back_dancing_2 3", "Dancing Back Legs 3 times"},
		{"sit", "Sitting Down"},
		{"stand 5", "Standing Up"},
		{"tall", "Standing Tall"},
		{"center", "Centering Legs"},
		{"align", "Aligning Legs"},
		{"spread", "Spreading Legs"},
	}

	for _, cfg := range []*robot.Config{robottest.ReducedConfig(), robottest.FullConfig()} {
		r := newRig(t, cfg)
		for _, tt := range tests {
			res := r.dispatcher.Execute(context.Background(), mustParse(t, tt.line))
			assert.Equal(t, tt.want, res.Response, tt.line)
			assert.NoError(t, res.Err, tt.line)
			assert.True(t, res.Outcome.Completed(), "%s: %v", tt.line, res.Outcome.Skips)
		}
	}
}

func mustParse(t *testing.T, line string) Request {
	t.Helper()
	req, err := ParseRequest(line)
	require.NoError(t, err)
	return req
}

func TestDispatch_CommandsList(t *testing.T) {
	r := newRig(t, robottest.ReducedConfig())

	resp := r.dispatcher.Dispatch(context.Background(), "commands")
	assert.Equal(t, "Implemented Commands: walk, walk_back, turn_left, turn_right, "+
		"rotate_left, rotate_right, row_forward, row_back, "+
		"front_dancing_1, front_dancing_2, back_dancing_1, back_dancing_2, "+
		"sit, stand, tall, center, align, spread, commands", resp)
	assert.Zero(t, r.WriteCount())
}

func TestDispatch_DanceRunsPatternPerIteration(t *testing.T) {
	r := newRig(t, robottest.ReducedConfig())

	res := r.dispatcher.Execute(context.Background(), Request{Command: "back_dancing_1", Iteration: 3})
	require.NoError(t, res.Err)

	var swings int
	for _, ev := range r.events {
		if ev.Step == "swing in" && ev.Leg == robot.LeftBack {
			swings++
		}
	}
	assert.Equal(t, 3, swings)
	assert.Len(t, r.firstLegs("lean center"), 1)
	assert.Equal(t, "back_dancing_1", res.Outcome.Maneuver)
}

func TestDispatch_Cancelled(t *testing.T) {
	r := newRig(t, robottest.FullConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, "ERROR: request cancelled", r.dispatcher.Dispatch(ctx, "walk"))
	assert.Zero(t, r.WriteCount())
}

func TestDispatch_SkipsAreCounted(t *testing.T) {
	cfg := robottest.FullConfig()
	for bi := range cfg.Boards {
		for si := range cfg.Boards[bi].Servos {
			cfg.Boards[bi].Servos[si].Back = nil
		}
	}
	r := newRig(t, cfg)

	res := r.dispatcher.Execute(context.Background(), Request{Command: "spread", Iteration: 1})
	assert.Equal(t, "Spreading Legs", res.Response)
	assert.Len(t, res.Outcome.Skips, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.JointSkips.WithLabelValues("spread")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.CommandsTotal.WithLabelValues("spread", metric.StatusSkipped)))
}

func TestDispatch_SerializesConcurrentCommands(t *testing.T) {
	r := newRig(t, robottest.ReducedConfig())
	require.Equal(t, "Standing Up", r.dispatcher.Dispatch(context.Background(), "stand"))
	r.events = nil

	lines := []string{"rotate_left", "row_forward", "turn_right", "rotate_right", "row_back", "walk"}
	var wg sync.WaitGroup
	for _, line := range lines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.dispatcher.Dispatch(context.Background(), line)
		}()
	}
	wg.Wait()

	// Each maneuver's writes form one contiguous block.
	seen := make(map[string]bool)
	prev := ""
	for _, ev := range r.events {
		if ev.Maneuver != prev {
			assert.False(t, seen[ev.Maneuver], "%s interleaved", ev.Maneuver)
			seen[ev.Maneuver] = true
			prev = ev.Maneuver
		}
	}
	assert.Len(t, seen, len(lines))
}

func TestDispatcher_Wakeup(t *testing.T) {
	r := newRig(t, robottest.ReducedConfig())

	out, err := r.dispatcher.Wakeup(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Completed())
	assert.Equal(t, robot.HeightLowered, r.Robot.Height())
	assert.Equal(t, 24, r.WriteCount())
}
