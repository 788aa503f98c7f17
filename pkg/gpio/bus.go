package gpio

import (
	"time"

	"github.com/pkg/errors"
)

// Bus drives a Port with the timing discipline HUB75 panels need.
//
// Every register write is repeated slowdown+1 times; faster Pis push data out
// quicker than most panel drivers accept. The value is a calibration knob with
// no fixed relation to wall clock time.
type Bus struct {
	port     Port
	clock    Clock
	slowdown int

	outputs  uint32
	inputs   uint32
	reserved uint32
}

// NewBus creates a bus over port. A nil clock selects the system clock.
func NewBus(port Port, clock Clock, slowdown int) *Bus {
	if clock == nil {
		clock = SystemClock{}
	}
	if slowdown < 0 {
		slowdown = 0
	}
	return &Bus{
		port:     port,
		clock:    clock,
		slowdown: slowdown,
	}
}

// Port returns the underlying backend.
func (b *Bus) Port() Port {
	return b.port
}

// Clock returns the clock used for strobes and pulses.
func (b *Bus) Clock() Clock {
	return b.clock
}

// Slowdown returns the number of extra repetitions per register write.
func (b *Bus) Slowdown() int {
	return b.slowdown
}

// Reserve marks pins that must never be claimed as inputs or outputs.
func (b *Bus) Reserve(bits uint32) {
	b.reserved |= bits &^ b.outputs
}

// Reserved returns the reserved pins.
func (b *Bus) Reserved() uint32 {
	return b.reserved
}

// RequestOutputs configures bits as outputs.
func (b *Bus) RequestOutputs(bits uint32) error {
	if conflict := bits & (b.reserved | b.inputs); conflict != 0 {
		return errors.Wrapf(ErrPinReserved, "pins %v", Pins(conflict))
	}
	if err := b.port.SetOutputs(bits); err != nil {
		return errors.Wrap(err, "failed to configure outputs")
	}
	b.outputs |= bits
	return nil
}

// RequestInputs configures the requested bits that are not already in use as
// inputs and returns the bits actually granted.
func (b *Bus) RequestInputs(bits uint32) (uint32, error) {
	bits &^= b.outputs | b.inputs | b.reserved
	if bits == 0 {
		return 0, nil
	}
	if err := b.port.SetInputs(bits); err != nil {
		return 0, errors.Wrap(err, "failed to configure inputs")
	}
	b.inputs |= bits
	return bits, nil
}

// Outputs returns the pins configured as outputs.
func (b *Bus) Outputs() uint32 {
	return b.outputs
}

// Inputs returns the pins configured as inputs.
func (b *Bus) Inputs() uint32 {
	return b.inputs
}

// SetBits drives bits high.
func (b *Bus) SetBits(bits uint32) {
	if bits == 0 {
		return
	}
	for i := 0; i <= b.slowdown; i++ {
		b.port.SetBits(bits)
	}
}

// ClearBits drives bits low.
func (b *Bus) ClearBits(bits uint32) {
	if bits == 0 {
		return
	}
	for i := 0; i <= b.slowdown; i++ {
		b.port.ClearBits(bits)
	}
}

// WriteMask drives on high and off low. Pins in both masks end up high.
func (b *Bus) WriteMask(on, off uint32) {
	b.ClearBits(off &^ on)
	b.SetBits(on)
}

// WriteMaskedBits makes the pins selected by mask follow value.
func (b *Bus) WriteMaskedBits(value, mask uint32) {
	b.WriteMask(value&mask, ^value&mask)
}

// Strobe issues a rising then falling edge on bits, holding the high phase
// for at least hold.
func (b *Bus) Strobe(bits uint32, hold time.Duration) {
	b.SetBits(bits)
	if hold > 0 {
		b.clock.Sleep(hold)
	}
	b.ClearBits(bits)
}

// Read returns the levels of the configured input pins.
func (b *Bus) Read() uint32 {
	return b.port.Levels() & b.inputs
}

// Close releases the underlying port.
func (b *Bus) Close() error {
	return b.port.Close()
}
