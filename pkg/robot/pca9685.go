package robot

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"
	"periph.io/x/host/v3"
)

var (
	hostOnce sync.Once
	hostErr  error
)

// PCA9685 drives a 16 channel PCA9685 PWM board over I2C.
type PCA9685 struct {
	bus     i2c.BusCloser
	dev     *pca9685.Dev
	address uint16
}

// OpenPCA9685 opens the board on cfg.Bus (the first bus when empty) and sets
// its PWM frequency.
func OpenPCA9685(cfg BoardConfig) (*PCA9685, error) {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	if hostErr != nil {
		return nil, errors.Wrap(hostErr, "init periph host")
	}

	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c bus %q", cfg.Bus)
	}

	dev, err := pca9685.NewI2C(bus, cfg.Address)
	if err != nil {
		bus.Close()
		return nil, errors.Wrapf(err, "open pca9685 at 0x%02x", cfg.Address)
	}

	if err := dev.SetPwmFreq(physic.Frequency(cfg.PWMFreq) * physic.Hertz); err != nil {
		bus.Close()
		return nil, errors.Wrapf(err, "set pwm frequency on 0x%02x", cfg.Address)
	}

	log.WithField("board", cfg.Address).WithField("pwm_freq", cfg.PWMFreq).Info("pca9685 ready")

	return &PCA9685{
		bus:     bus,
		dev:     dev,
		address: cfg.Address,
	}, nil
}

// SetPWM sets the on and off ticks of channel.
func (p *PCA9685) SetPWM(channel, on, off int) error {
	return p.dev.SetPwm(channel, gpio.Duty(on), gpio.Duty(off))
}

// Close releases the I2C bus.
func (p *PCA9685) Close() error {
	return p.bus.Close()
}
