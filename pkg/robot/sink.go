package robot

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "robot",
})

// Sink accepts PWM writes for one board. Writes are fire and forget: there is
// no read-back of the servo position.
type Sink interface {
	SetPWM(channel, on, off int) error
}

// Opener opens the sink for a board. OpenBoard is the default.
type Opener func(BoardConfig) (Sink, error)

// OpenBoard opens the sink named by the board's driver.
func OpenBoard(cfg BoardConfig) (Sink, error) {
	switch cfg.DriverName() {
	case DriverPCA9685:
		return OpenPCA9685(cfg)
	case DriverFeetech:
		return OpenFeetech(cfg)
	case DriverDryRun:
		return NewDryRun(cfg.Address), nil
	default:
		return nil, configErrorf("board 0x%02x: unknown driver %q", cfg.Address, cfg.Driver)
	}
}

// DryRun opens every board as a logging Recorder, for running without
// hardware attached.
func DryRun(cfg BoardConfig) (Sink, error) {
	return NewDryRun(cfg.Address), nil
}

// Write is one recorded SetPWM call.
type Write struct {
	Channel int
	On      int
	Off     int
}

// Recorder is a Sink that keeps every write in memory.
type Recorder struct {
	mu     sync.Mutex
	writes []Write
	log    *logrus.Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// NewDryRun returns a Recorder that also logs each write at debug level.
func NewDryRun(address uint16) *Recorder {
	return &Recorder{
		log: log.WithField("board", fmt.Sprintf("0x%02x", address)),
	}
}

func (r *Recorder) SetPWM(channel, on, off int) error {
	r.mu.Lock()
	r.writes = append(r.writes, Write{Channel: channel, On: on, Off: off})
	r.mu.Unlock()

	if r.log != nil {
		r.log.WithFields(logrus.Fields{
			"channel": channel,
			"pulse":   off,
		}).Debug("set pwm")
	}
	return nil
}

// Writes returns a copy of all writes so far.
func (r *Recorder) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Write(nil), r.writes...)
}

// Len returns the number of writes so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

// Last returns the most recent write to channel.
func (r *Recorder) Last(channel int) (Write, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.writes) - 1; i >= 0; i-- {
		if r.writes[i].Channel == channel {
			return r.writes[i], true
		}
	}
	return Write{}, false
}

// Reset forgets all writes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.writes = nil
	r.mu.Unlock()
}

func closeSink(s Sink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
