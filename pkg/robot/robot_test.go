package robot_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/hexapod/pkg/robot"
	"github.com/gwillem/hexapod/pkg/robot/robottest"
)

func TestNew_DetectsProfile(t *testing.T) {
	reduced := robottest.New(t, robottest.ReducedConfig())
	assert.Equal(t, robot.ProfileReduced, reduced.Robot.Profile())
	assert.Len(t, reduced.Robot.Joints(), 12)

	full := robottest.New(t, robottest.FullConfig())
	assert.Equal(t, robot.ProfileFull, full.Robot.Profile())
	assert.Len(t, full.Robot.Joints(), 18)
	assert.Len(t, full.Boards, 2)
}

func TestNew_InitialState(t *testing.T) {
	f := robottest.New(t, robottest.FullConfig())

	assert.Equal(t, robot.PostureResting, f.Robot.Posture())
	assert.Equal(t, robot.LayoutUnknown, f.Robot.Layout())
	assert.Equal(t, 0, f.WriteCount(), "construction must not move servos")
}

func TestNew_LegLookup(t *testing.T) {
	f := robottest.New(t, robottest.FullConfig())

	for _, name := range robot.AllLegs() {
		leg, ok := f.Robot.Leg(name)
		require.True(t, ok, name)
		for _, role := range robot.ProfileFull.Joints() {
			j, ok := leg.Joint(role)
			require.True(t, ok, "%s %s", name, role)
			assert.Equal(t, robot.JointName(name, role), j.Name())
		}
	}

	_, ok := f.Robot.Leg("tail")
	assert.False(t, ok)
}

func removeServo(cfg *robot.Config, name string) {
	for bi := range cfg.Boards {
		servos := cfg.Boards[bi].Servos[:0]
		for _, s := range cfg.Boards[bi].Servos {
			if s.Name != name {
				servos = append(servos, s)
			}
		}
		cfg.Boards[bi].Servos = servos
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*robot.Config)
	}{
		{"no boards", func(c *robot.Config) { c.Boards = nil }},
		{"missing joint", func(c *robot.Config) { removeServo(c, "left_back_raise") }},
		{"mixed profiles", func(c *robot.Config) {
			removeServo(c, "right_front_raise")
			c.Boards[0].Servos = append(c.Boards[0].Servos,
				robot.ServoConfig{Name: "right_front_upper", Channel: 12, ServoMin: 150, ServoMax: 600},
				robot.ServoConfig{Name: "right_front_lower", Channel: 13, ServoMin: 150, ServoMax: 600},
			)
		}},
		{"stray servo", func(c *robot.Config) {
			c.Boards[0].Servos = append(c.Boards[0].Servos,
				robot.ServoConfig{Name: "camera_pan", Channel: 14, ServoMin: 150, ServoMax: 600})
		}},
		{"declared profile disagrees", func(c *robot.Config) { c.Profile = "full" }},
		{"unknown profile", func(c *robot.Config) { c.Profile = "octopod" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := robottest.ReducedConfig()
			tt.mutate(cfg)

			_, err := robot.New(cfg, robot.DryRun)
			require.Error(t, err)
			assert.True(t, errors.Is(err, robot.ErrConfiguration), "got %v", err)
		})
	}
}

func TestNew_OpenError(t *testing.T) {
	_, err := robot.New(robottest.FullConfig(), func(bc robot.BoardConfig) (robot.Sink, error) {
		return nil, errors.New("no such bus")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x40")
}

type closingSink struct {
	*robot.Recorder
	err error
}

func (s closingSink) Close() error { return s.err }

func TestRobot_CloseJoinsErrors(t *testing.T) {
	errFront := errors.New("front bus stuck")
	errBack := errors.New("back bus stuck")
	r, err := robot.New(robottest.FullConfig(), func(bc robot.BoardConfig) (robot.Sink, error) {
		if bc.Address == 0x40 {
			return closingSink{robot.NewRecorder(), errFront}, nil
		}
		return closingSink{robot.NewRecorder(), errBack}, nil
	})
	require.NoError(t, err)

	err = r.Close()
	assert.ErrorIs(t, err, errFront)
	assert.ErrorIs(t, err, errBack)
}

func TestRobot_Select(t *testing.T) {
	f := robottest.New(t, robottest.ReducedConfig())

	legs, err := f.Robot.Select(robot.SelectRightLeftRight)
	require.NoError(t, err)
	var names []robot.LegName
	for _, l := range legs {
		names = append(names, l.Name())
	}
	assert.Equal(t, []robot.LegName{robot.RightFront, robot.LeftCenter, robot.RightBack}, names)

	_, err = f.Robot.Select("everything")
	assert.Error(t, err)
}

func TestRobot_ConfigExportsCalibration(t *testing.T) {
	f := robottest.New(t, robottest.FullConfig())

	j, ok := f.Robot.Joint("left_back_lower")
	require.True(t, ok)
	require.NoError(t, j.SetRange(140, 610))

	cfg := f.Robot.Config()
	assert.Equal(t, "full", cfg.Profile)
	require.Len(t, cfg.Boards, 2)
	assert.Equal(t, uint16(0x41), cfg.Boards[1].Address)

	var found bool
	for _, s := range cfg.Boards[1].Servos {
		if s.Name == "left_back_lower" {
			found = true
			assert.Equal(t, 140, s.ServoMin)
			assert.Equal(t, 610, s.ServoMax)
		}
	}
	assert.True(t, found)
	require.NoError(t, cfg.Validate())
}
