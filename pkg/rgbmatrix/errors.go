package rgbmatrix

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned for configuration values outside their range.
	ErrInvalidConfig = errors.New("rgbmatrix: invalid config")
	// ErrTooManyParallel is returned when the hardware mapping wires fewer chains than requested.
	ErrTooManyParallel = errors.New("rgbmatrix: too many parallel chains for hardware mapping")
	// ErrClosed is returned by canvas operations after the matrix was closed.
	ErrClosed = errors.New("rgbmatrix: closed")
	// ErrSoundModuleLoaded is returned when the on-board sound driver holds the PWM peripheral.
	ErrSoundModuleLoaded = errors.New("rgbmatrix: snd_bcm2835 is loaded, disable on-board sound first")
	// ErrOneWireEnabled is returned when the 1-wire driver claims GPIO 4 which the mapping drives.
	ErrOneWireEnabled = errors.New("rgbmatrix: w1_gpio is loaded and GPIO 4 is used as an output")
)
