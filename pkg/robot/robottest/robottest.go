// Package robottest provides calibration fixtures and recording robots for
// tests.
package robottest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gwillem/hexapod/pkg/robot"
)

// Pulse range used by every fixture servo.
const (
	ServoMin = 150
	ServoMax = 600
)

func pct(v float64) *float64 { return &v }

func servo(leg robot.LegName, role robot.JointRole, channel int) robot.ServoConfig {
	s := robot.ServoConfig{
		Name:     robot.JointName(leg, role),
		Channel:  channel,
		ServoMin: ServoMin,
		ServoMax: ServoMax,
		// Right side servos are mounted mirrored.
		Invert: leg.Side() == robot.Right,
	}
	switch role {
	case robot.Rotate:
		s.Forward, s.Back, s.Center = pct(75), pct(25), pct(50)
	case robot.Raise, robot.Lower:
		s.Up, s.Center, s.Down = pct(0), pct(50), pct(100)
	case robot.Upper:
		s.Center = pct(50)
	}
	return s
}

// ReducedConfig is a 12 servo calibration on a single board.
func ReducedConfig() *robot.Config {
	b := robot.BoardConfig{Address: 0x40, PWMFreq: 60, Driver: robot.DriverDryRun}
	ch := 0
	for _, leg := range robot.AllLegs() {
		for _, role := range robot.ProfileReduced.Joints() {
			b.Servos = append(b.Servos, servo(leg, role, ch))
			ch++
		}
	}
	return &robot.Config{Boards: []robot.BoardConfig{b}}
}

// FullConfig is an 18 servo calibration split over two boards: front and
// center legs on 0x40, back legs on 0x41.
func FullConfig() *robot.Config {
	b0 := robot.BoardConfig{Address: 0x40, PWMFreq: 60, Driver: robot.DriverDryRun}
	b1 := robot.BoardConfig{Address: 0x41, PWMFreq: 60, Driver: robot.DriverDryRun}
	ch0, ch1 := 0, 0
	for _, leg := range robot.AllLegs() {
		for _, role := range robot.ProfileFull.Joints() {
			if leg.Row() == robot.Back {
				b1.Servos = append(b1.Servos, servo(leg, role, ch1))
				ch1++
			} else {
				b0.Servos = append(b0.Servos, servo(leg, role, ch0))
				ch0++
			}
		}
	}
	return &robot.Config{Boards: []robot.BoardConfig{b0, b1}}
}

// Fixture is a robot whose boards are Recorders.
type Fixture struct {
	Robot  *robot.Robot
	Boards map[uint16]*robot.Recorder
}

// New builds a robot from cfg with every board recording its writes.
func New(t testing.TB, cfg *robot.Config) *Fixture {
	t.Helper()

	f := &Fixture{Boards: make(map[uint16]*robot.Recorder)}
	r, err := robot.New(cfg, func(bc robot.BoardConfig) (robot.Sink, error) {
		rec := robot.NewRecorder()
		f.Boards[bc.Address] = rec
		return rec, nil
	})
	require.NoError(t, err)
	f.Robot = r
	return f
}

// WriteCount returns the number of writes across all boards.
func (f *Fixture) WriteCount() int {
	n := 0
	for _, rec := range f.Boards {
		n += rec.Len()
	}
	return n
}

// Reset clears every board's recorded writes.
func (f *Fixture) Reset() {
	for _, rec := range f.Boards {
		rec.Reset()
	}
}
