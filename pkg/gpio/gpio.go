// Package gpio provides register level access to the Raspberry Pi GPIO bank
// and the timing primitives used to drive HUB75 panels.
//
// Pins are addressed as bit masks: bit n is GPIO n. A Port is the raw backend
// (memory mapped registers, the GPIO character device, periph.io or sysfs);
// a Bus layers the slowdown factor, strobes and pin bookkeeping on top.
package gpio

import (
	mathbits "math/bits"
)

// MaxPins is the number of GPIO lines addressable through a Port.
const MaxPins = 32

// Port is a bank of up to 32 GPIO lines addressed by bit mask.
type Port interface {
	// SetBits drives the given lines high. Other lines are untouched.
	SetBits(bits uint32)
	// ClearBits drives the given lines low. Other lines are untouched.
	ClearBits(bits uint32)
	// Levels returns the current level of all lines.
	Levels() uint32
	// SetOutputs configures the given lines as outputs.
	SetOutputs(bits uint32) error
	// SetInputs configures the given lines as inputs.
	SetInputs(bits uint32) error
	Close() error
}

// Bits returns the mask with the given GPIO numbers set.
func Bits(pins ...int) uint32 {
	var b uint32
	for _, p := range pins {
		if p >= 0 && p < MaxPins {
			b |= 1 << uint(p)
		}
	}
	return b
}

// Pins lists the GPIO numbers set in bits in ascending order.
func Pins(bits uint32) []int {
	pins := make([]int, 0, mathbits.OnesCount32(bits))
	forEachPin(bits, func(pin int) {
		pins = append(pins, pin)
	})
	return pins
}

func forEachPin(bits uint32, fn func(pin int)) {
	for b := bits; b != 0; b &= b - 1 {
		fn(mathbits.TrailingZeros32(b))
	}
}
