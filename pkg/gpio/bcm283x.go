package gpio

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/fkcurrie/hub75-golang/pkg/mmap"
)

// See https://elinux.org/BCM2835_registers.
const (
	gpioOffset = 0x200000
	gpioSize   = 41 * 4
	gpioFSEL0  = 0x00
	gpioSET0   = 0x1C
	gpioCLR0   = 0x28
	gpioLEV0   = 0x34

	stOffset = 0x3000
	stSize   = 28
	stCLO    = 0x04
	stCHI    = 0x08

	// Highest pin with a function select field.
	maxFunctionPin = 53
)

// Function is a GPIO function select value.
type Function uint32

const (
	Input  Function = 0b000
	Output Function = 0b001
	Alt0   Function = 0b100
	Alt1   Function = 0b101
	Alt2   Function = 0b110
	Alt3   Function = 0b111
	Alt4   Function = 0b011
	Alt5   Function = 0b010
)

// BCM is a Port backed by the memory mapped BCM283x GPIO registers.
type BCM struct {
	regs *mmap.MemoryMap
	set  *uint32
	clr  *uint32
	lev  *uint32
}

// OpenBCM maps the GPIO register block of chip. Needs root.
func OpenBCM(chip Chip) (*BCM, error) {
	if chip == ChipUnknown {
		return nil, errors.Wrap(ErrUnknownChip, "register access needs a known chip")
	}
	regs, err := mmap.NewMemoryMap(chip.PeripheralBase()+gpioOffset, gpioSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map GPIO registers")
	}
	return NewBCM(regs), nil
}

// NewBCM wraps an already mapped GPIO register block.
func NewBCM(regs *mmap.MemoryMap) *BCM {
	return &BCM{
		regs: regs,
		set:  regs.Register(gpioSET0),
		clr:  regs.Register(gpioCLR0),
		lev:  regs.Register(gpioLEV0),
	}
}

// SetBits writes bits to GPSET0.
func (b *BCM) SetBits(bits uint32) {
	atomic.StoreUint32(b.set, bits)
}

// ClearBits writes bits to GPCLR0.
func (b *BCM) ClearBits(bits uint32) {
	atomic.StoreUint32(b.clr, bits)
}

// Levels reads GPLEV0.
func (b *BCM) Levels() uint32 {
	return atomic.LoadUint32(b.lev)
}

// SetFunction programs the function select field of pin.
func (b *BCM) SetFunction(pin int, fn Function) error {
	if pin < 0 || pin > maxFunctionPin {
		return errors.Wrapf(ErrInvalidPin, "pin %d", pin)
	}
	offset := uintptr(gpioFSEL0 + (pin/10)*4)
	shift := uint(pin%10) * 3
	value := b.regs.Read32(offset)
	value = value&^(0b111<<shift) | uint32(fn)<<shift
	b.regs.Write32(offset, value)
	return nil
}

// Function returns the current function select value of pin.
func (b *BCM) Function(pin int) Function {
	offset := uintptr(gpioFSEL0 + (pin/10)*4)
	shift := uint(pin%10) * 3
	return Function(b.regs.Read32(offset)>>shift) & 0b111
}

// SetOutputs switches bits to output function.
func (b *BCM) SetOutputs(bits uint32) error {
	return b.setFunctions(bits, Output)
}

// SetInputs switches bits to input function.
func (b *BCM) SetInputs(bits uint32) error {
	return b.setFunctions(bits, Input)
}

func (b *BCM) setFunctions(bits uint32, fn Function) error {
	var err error
	forEachPin(bits, func(pin int) {
		if err == nil {
			err = b.SetFunction(pin, fn)
		}
	})
	return err
}

// Close unmaps the registers.
func (b *BCM) Close() error {
	return b.regs.Close()
}

// Timer is a Clock reading the free running 1 MHz BCM system timer.
type Timer struct {
	regs *mmap.MemoryMap
}

// OpenTimer maps the system timer of chip.
func OpenTimer(chip Chip) (*Timer, error) {
	if chip == ChipUnknown {
		return nil, errors.Wrap(ErrUnknownChip, "system timer needs a known chip")
	}
	regs, err := mmap.NewMemoryMap(chip.PeripheralBase()+stOffset, stSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map system timer")
	}
	return NewTimer(regs), nil
}

// NewTimer wraps an already mapped system timer block.
func NewTimer(regs *mmap.MemoryMap) *Timer {
	return &Timer{regs: regs}
}

// Now returns the 64-bit counter value.
func (t *Timer) Now() time.Duration {
	for {
		hi := t.regs.Read32(stCHI)
		lo := t.regs.Read32(stCLO)
		if t.regs.Read32(stCHI) == hi {
			return time.Duration(uint64(hi)<<32|uint64(lo)) * time.Microsecond
		}
	}
}

// Sleep blocks for d.
func (t *Timer) Sleep(d time.Duration) {
	preciseSleep(t, d)
}

// Close unmaps the timer registers.
func (t *Timer) Close() error {
	return t.regs.Close()
}
