package robot

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every ConfigurationError.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports calibration data that cannot describe a robot:
// missing boards, servos or legs, or a joint layout that matches no profile.
// It is fatal at construction.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) hold for any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// RangeError is returned when a joint is asked for a percent outside [0,100].
// Nothing is written to the hardware.
type RangeError struct {
	Joint   string
	Percent float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("joint %s: percent must be between 0 and 100, got %g", e.Joint, e.Percent)
}

// UndefinedEndpointError is returned by MoveTo when the joint has no percent
// configured for the requested endpoint.
type UndefinedEndpointError struct {
	Joint    string
	Endpoint Endpoint
}

func (e *UndefinedEndpointError) Error() string {
	return fmt.Sprintf("joint %s: %s not defined", e.Joint, e.Endpoint)
}

// Recoverable reports whether err is a per-joint condition a maneuver may skip
// over (invalid percent, missing endpoint) rather than abort on.
func Recoverable(err error) bool {
	var re *RangeError
	var ue *UndefinedEndpointError
	return errors.As(err, &re) || errors.As(err, &ue)
}
