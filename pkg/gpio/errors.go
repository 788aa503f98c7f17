package gpio

import "github.com/pkg/errors"

var (
	// ErrUnknownChip is returned for chip names or revisions that are not supported.
	ErrUnknownChip = errors.New("gpio: unknown chip")
	// ErrInvalidPin is returned for pin numbers outside the addressable range.
	ErrInvalidPin = errors.New("gpio: invalid pin")
	// ErrPinReserved is returned when a pin is requested that is reserved for other use.
	ErrPinReserved = errors.New("gpio: pin reserved")
	// ErrNoHardwarePulse is returned when the output enable line cannot be driven by the PWM peripheral.
	ErrNoHardwarePulse = errors.New("gpio: output enable pin has no PWM function")
	// ErrPulseTiming is returned when bit-plane timings cannot be generated by the PWM clock.
	ErrPulseTiming = errors.New("gpio: pulse timing out of range")
)
