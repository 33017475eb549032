package robot

import (
	"fmt"
	"sync"
)

// Endpoint is a named position configured per joint in the calibration file.
type Endpoint string

const (
	EndpointForward Endpoint = "forward"
	EndpointBack    Endpoint = "back"
	EndpointUp      Endpoint = "up"
	EndpointDown    Endpoint = "down"
	EndpointCenter  Endpoint = "center"
)

// AllEndpoints returns the endpoints in calibration file order.
func AllEndpoints() []Endpoint {
	return []Endpoint{EndpointForward, EndpointBack, EndpointUp, EndpointDown, EndpointCenter}
}

// Joint is a single servo on a PWM channel. Positions are given as a percent
// of the calibrated pulse range.
type Joint struct {
	name    string
	leg     LegName
	role    JointRole
	sink    Sink
	channel int

	mu        sync.Mutex
	min, max  int
	invert    bool
	endpoints map[Endpoint]float64
	pulse     int
	written   bool
}

// NewJoint creates a joint writing to channel on sink.
func NewJoint(cfg ServoConfig, sink Sink) *Joint {
	leg, role, _ := SplitJointName(cfg.Name)
	j := &Joint{
		name:      cfg.Name,
		leg:       leg,
		role:      role,
		sink:      sink,
		channel:   cfg.Channel,
		min:       cfg.ServoMin,
		max:       cfg.ServoMax,
		invert:    cfg.Invert,
		endpoints: make(map[Endpoint]float64),
	}
	for _, e := range AllEndpoints() {
		if p := cfg.endpoint(e); p != nil {
			j.endpoints[e] = *p
		}
	}
	return j
}

// Name returns the calibration name, e.g. "left_front_rotate".
func (j *Joint) Name() string { return j.name }

// Leg returns the leg this joint belongs to.
func (j *Joint) Leg() LegName { return j.leg }

// Role returns the joint's role within its leg.
func (j *Joint) Role() JointRole { return j.role }

// Channel returns the PWM channel on the joint's board.
func (j *Joint) Channel() int { return j.channel }

// Range returns the calibrated pulse range.
func (j *Joint) Range() (min, max int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.min, j.max
}

// SetRange replaces the calibrated pulse range. Used while calibrating.
func (j *Joint) SetRange(min, max int) error {
	if min >= max {
		return fmt.Errorf("joint %s: servo_min (%d) must be less than servo_max (%d)", j.name, min, max)
	}
	j.mu.Lock()
	j.min, j.max = min, max
	j.mu.Unlock()
	return nil
}

// Endpoint returns the configured percent for e.
func (j *Joint) Endpoint(e Endpoint) (float64, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	p, ok := j.endpoints[e]
	return p, ok
}

// SetEndpoint configures the percent for e.
func (j *Joint) SetEndpoint(e Endpoint, percent float64) error {
	if !validPercent(percent) {
		return &RangeError{Joint: j.name, Percent: percent}
	}
	j.mu.Lock()
	j.endpoints[e] = percent
	j.mu.Unlock()
	return nil
}

// validPercent reports whether p lies in [0,100]. NaN does not.
func validPercent(p float64) bool {
	return p >= 0 && p <= 100
}

// PulseFor maps percent to a pulse without writing it.
func (j *Joint) PulseFor(percent float64) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pulseFor(percent)
}

func (j *Joint) pulseFor(percent float64) (int, error) {
	if !validPercent(percent) {
		return 0, &RangeError{Joint: j.name, Percent: percent}
	}
	if j.invert {
		percent = 100 - percent
	}
	return j.min + int(percent*float64(j.max-j.min)/100), nil
}

// PercentFor maps a pulse back to a percent, undoing invert. Pulses outside
// the calibrated range give percents outside [0,100].
func (j *Joint) PercentFor(pulse int) float64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	p := float64(pulse-j.min) * 100 / float64(j.max-j.min)
	if j.invert {
		p = 100 - p
	}
	return p
}

// SetPosition moves the joint to percent of its calibrated range.
// An out of range percent returns a RangeError and nothing is written.
func (j *Joint) SetPosition(percent float64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	pulse, err := j.pulseFor(percent)
	if err != nil {
		return err
	}
	return j.write(pulse)
}

// SetPulse writes a raw pulse, bypassing calibration. Only meant for tuning
// servo_min and servo_max.
func (j *Joint) SetPulse(pulse int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.write(pulse)
}

func (j *Joint) write(pulse int) error {
	if err := j.sink.SetPWM(j.channel, 0, pulse); err != nil {
		return fmt.Errorf("joint %s: write channel %d: %w", j.name, j.channel, err)
	}
	j.pulse = pulse
	j.written = true
	return nil
}

// MoveTo moves the joint to a named endpoint. Returns an
// UndefinedEndpointError if the endpoint is not configured.
func (j *Joint) MoveTo(e Endpoint) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	percent, ok := j.endpoints[e]
	if !ok {
		return &UndefinedEndpointError{Joint: j.name, Endpoint: e}
	}
	pulse, err := j.pulseFor(percent)
	if err != nil {
		return err
	}
	return j.write(pulse)
}

// Pulse returns the last pulse written. ok is false before the first write.
func (j *Joint) Pulse() (pulse int, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pulse, j.written
}

// Calibration exports the joint's current calibration for saving.
func (j *Joint) Calibration() ServoConfig {
	j.mu.Lock()
	defer j.mu.Unlock()

	cfg := ServoConfig{
		Name:     j.name,
		Channel:  j.channel,
		ServoMin: j.min,
		ServoMax: j.max,
		Invert:   j.invert,
	}
	for e, p := range j.endpoints {
		cfg.setEndpoint(e, p)
	}
	return cfg
}
