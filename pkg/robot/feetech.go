package robot

import (
	"context"
	"sync"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"github.com/pkg/errors"
)

const (
	feetechBaudRate = 1_000_000
	feetechTimeout  = 100 * time.Millisecond
)

// Feetech drives serial bus servos. The channel is the servo ID and the off
// tick is written as the goal position, so servo_min and servo_max are given
// in position steps.
type Feetech struct {
	bus *feetech.Bus

	mu     sync.Mutex
	servos map[int]*feetech.Servo
}

// OpenFeetech opens the bus on cfg.Port and enables torque on every servo
// listed for the board.
func OpenFeetech(cfg BoardConfig) (*Feetech, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: feetechBaudRate,
		Protocol: feetech.ProtocolSTS,
		Timeout:  feetechTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open feetech bus %s", cfg.Port)
	}

	f := &Feetech{
		bus:    bus,
		servos: make(map[int]*feetech.Servo),
	}

	ctx := context.Background()
	for _, s := range cfg.Servos {
		if err := f.servo(s.Channel).Enable(ctx); err != nil {
			log.WithField("servo", s.Name).WithError(err).Warn("enable torque failed")
		}
	}
	return f, nil
}

func (f *Feetech) servo(id int) *feetech.Servo {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.servos[id]
	if !ok {
		s = feetech.NewServo(f.bus, id, nil)
		f.servos[id] = s
	}
	return s
}

// SetPWM writes off as the goal position of servo channel. on is ignored.
func (f *Feetech) SetPWM(channel, on, off int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*feetechTimeout)
	defer cancel()
	return f.servo(channel).SetPosition(ctx, off)
}

// Close disables torque and closes the bus.
func (f *Feetech) Close() error {
	ctx := context.Background()
	f.mu.Lock()
	for _, s := range f.servos {
		s.Disable(ctx)
	}
	f.mu.Unlock()
	return f.bus.Close()
}
