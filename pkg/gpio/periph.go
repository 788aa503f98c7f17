package gpio

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Periph is a Port using the periph.io host drivers, one pin at a time. It
// is the slowest backend and mostly useful on hosts where neither /dev/mem
// nor the character device is available.
type Periph struct {
	mu   sync.Mutex
	pins [MaxPins]pgpio.PinIO
	err  error
}

// OpenPeriph initialises the periph.io host drivers.
func OpenPeriph() (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialise periph host")
	}
	return &Periph{}, nil
}

func (p *Periph) pin(n int) (pgpio.PinIO, error) {
	if p.pins[n] != nil {
		return p.pins[n], nil
	}
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if pin == nil {
		return nil, errors.Wrapf(ErrInvalidPin, "GPIO%d not found", n)
	}
	p.pins[n] = pin
	return pin, nil
}

// SetOutputs configures bits as outputs, initially low.
func (p *Periph) SetOutputs(bits uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	forEachPin(bits, func(n int) {
		if err != nil {
			return
		}
		var pin pgpio.PinIO
		if pin, err = p.pin(n); err != nil {
			return
		}
		if err = pin.Out(pgpio.Low); err != nil {
			err = errors.Wrapf(err, "failed to set GPIO%d as output", n)
		}
	})
	return err
}

// SetInputs configures bits as inputs without touching their pulls.
func (p *Periph) SetInputs(bits uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	forEachPin(bits, func(n int) {
		if err != nil {
			return
		}
		var pin pgpio.PinIO
		if pin, err = p.pin(n); err != nil {
			return
		}
		if err = pin.In(pgpio.PullNoChange, pgpio.NoEdge); err != nil {
			err = errors.Wrapf(err, "failed to set GPIO%d as input", n)
		}
	})
	return err
}

// SetBits drives bits high.
func (p *Periph) SetBits(bits uint32) {
	p.drive(bits, pgpio.High)
}

// ClearBits drives bits low.
func (p *Periph) ClearBits(bits uint32) {
	p.drive(bits, pgpio.Low)
}

func (p *Periph) drive(bits uint32, level pgpio.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	forEachPin(bits, func(n int) {
		pin := p.pins[n]
		if pin == nil {
			return
		}
		if err := pin.Out(level); err != nil && p.err == nil {
			p.err = errors.Wrapf(err, "failed to drive GPIO%d", n)
		}
	})
}

// Levels reads every configured pin.
func (p *Periph) Levels() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var levels uint32
	for n, pin := range p.pins {
		if pin != nil && pin.Read() == pgpio.High {
			levels |= 1 << uint(n)
		}
	}
	return levels
}

// Err returns the first failed write.
func (p *Periph) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close halts all used pins.
func (p *Periph) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	for n, pin := range p.pins {
		if pin == nil {
			continue
		}
		if herr := pin.Halt(); herr != nil && err == nil {
			err = errors.Wrapf(herr, "failed to halt GPIO%d", n)
		}
		p.pins[n] = nil
	}
	return err
}
