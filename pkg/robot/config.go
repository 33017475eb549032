package robot

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "hexapod.yaml"

// Board drivers.
const (
	DriverPCA9685 = "pca9685"
	DriverFeetech = "feetech"
	DriverDryRun  = "dryrun"
)

// Config is the calibration file: the boards and the servos wired to them.
type Config struct {
	// Profile optionally pins the joint layout ("reduced" or "full"). When
	// empty it is detected from the servo names.
	Profile string        `yaml:"profile,omitempty"`
	Boards  []BoardConfig `yaml:"boards"`
}

// BoardConfig describes one servo controller board.
type BoardConfig struct {
	Address uint16 `yaml:"board_address"`
	PWMFreq int    `yaml:"pwm_freq"`
	// Driver selects the Sink implementation, default pca9685.
	Driver string `yaml:"driver,omitempty"`
	// Bus is the I2C bus name for pca9685 boards, e.g. "I2C1".
	Bus string `yaml:"bus,omitempty"`
	// Port is the serial device for feetech boards.
	Port   string        `yaml:"port,omitempty"`
	Servos []ServoConfig `yaml:"servos"`
}

// ServoConfig holds the calibration for a single servo. Endpoints are
// percentages and may be left out.
type ServoConfig struct {
	Name     string   `yaml:"name"`
	Channel  int      `yaml:"channel"`
	ServoMin int      `yaml:"servo_min"`
	ServoMax int      `yaml:"servo_max"`
	Forward  *float64 `yaml:"forward"`
	Back     *float64 `yaml:"back"`
	Up       *float64 `yaml:"up"`
	Down     *float64 `yaml:"down"`
	Center   *float64 `yaml:"center"`
	Invert   bool     `yaml:"invert"`
}

func (s *ServoConfig) endpoint(e Endpoint) *float64 {
	switch e {
	case EndpointForward:
		return s.Forward
	case EndpointBack:
		return s.Back
	case EndpointUp:
		return s.Up
	case EndpointDown:
		return s.Down
	case EndpointCenter:
		return s.Center
	}
	return nil
}

func (s *ServoConfig) setEndpoint(e Endpoint, percent float64) {
	p := &percent
	switch e {
	case EndpointForward:
		s.Forward = p
	case EndpointBack:
		s.Back = p
	case EndpointUp:
		s.Up = p
	case EndpointDown:
		s.Down = p
	case EndpointCenter:
		s.Center = p
	}
}

// DriverName returns the board driver, defaulting to pca9685.
func (b BoardConfig) DriverName() string {
	if b.Driver == "" {
		return DriverPCA9685
	}
	return b.Driver
}

// LoadConfigFrom loads and validates the calibration at path, or at
// DefaultConfigFile when path is empty.
func LoadConfigFrom(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read calibration file")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes and validates YAML calibration data.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse calibration YAML")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveTo writes the calibration to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode calibration")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}

// Validate checks the structure of the calibration. Joint layout against a
// profile is checked when the robot is built.
func (c *Config) Validate() error {
	if len(c.Boards) == 0 {
		return configErrorf("no boards found for the hexapod")
	}
	if c.Profile != "" {
		if _, err := ParseProfile(c.Profile); err != nil {
			return err
		}
	}

	addresses := make(map[uint16]bool)
	names := make(map[string]bool)
	for _, b := range c.Boards {
		if addresses[b.Address] {
			return configErrorf("duplicate board address 0x%02x", b.Address)
		}
		addresses[b.Address] = true

		switch b.DriverName() {
		case DriverPCA9685, DriverDryRun:
			if b.PWMFreq <= 0 {
				return configErrorf("board 0x%02x: pwm_freq must be positive", b.Address)
			}
		case DriverFeetech:
			if b.Port == "" {
				return configErrorf("board 0x%02x: feetech driver needs a port", b.Address)
			}
		default:
			return configErrorf("board 0x%02x: unknown driver %q", b.Address, b.Driver)
		}

		if len(b.Servos) == 0 {
			return configErrorf("no servos found for board 0x%02x", b.Address)
		}

		channels := make(map[int]bool)
		for _, s := range b.Servos {
			if err := s.validate(b); err != nil {
				return err
			}
			if names[s.Name] {
				return configErrorf("duplicate servo name %q", s.Name)
			}
			names[s.Name] = true
			if channels[s.Channel] {
				return configErrorf("board 0x%02x: channel %d used twice", b.Address, s.Channel)
			}
			channels[s.Channel] = true
		}
	}
	return nil
}

func (s *ServoConfig) validate(b BoardConfig) error {
	if s.Name == "" {
		return configErrorf("board 0x%02x: servo on channel %d has no name", b.Address, s.Channel)
	}
	if s.Channel < 0 || (b.DriverName() != DriverFeetech && s.Channel > 15) {
		return configErrorf("servo %s: invalid channel %d", s.Name, s.Channel)
	}
	if s.ServoMin < 0 || s.ServoMin >= s.ServoMax {
		return configErrorf("servo %s: invalid range: min (%d) must be less than max (%d)", s.Name, s.ServoMin, s.ServoMax)
	}
	for _, e := range AllEndpoints() {
		if p := s.endpoint(e); p != nil && !validPercent(*p) {
			return configErrorf("servo %s: %s must be between 0 and 100, got %g", s.Name, e, *p)
		}
	}
	return nil
}
