package gpio

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// DefaultCdevChip is the GPIO character device carrying the header pins.
const DefaultCdevChip = "gpiochip0"

const cdevConsumer = "hub75"

type cdevGroup struct {
	lines  *gpiocdev.Lines
	pins   []int
	values []int
}

// Cdev is a Port backed by the Linux GPIO character device. Every SetOutputs
// or SetInputs call becomes one multi-line request; writes go out with one
// SetValues per request.
//
// The character device cannot report a failed write through the Port
// interface, so the first error is kept and returned by Err.
type Cdev struct {
	chip    string
	mu      sync.Mutex
	outputs []*cdevGroup
	inputs  []*cdevGroup
	state   uint32
	err     error
}

// OpenCdev checks that chip exists and returns a port with no lines requested.
func OpenCdev(chip string) (*Cdev, error) {
	if chip == "" {
		chip = DefaultCdevChip
	}
	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer(cdevConsumer))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", chip)
	}
	if err := c.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to close %s", chip)
	}
	return &Cdev{chip: chip}, nil
}

// SetOutputs requests bits as outputs, initially low.
func (c *Cdev) SetOutputs(bits uint32) error {
	if bits == 0 {
		return nil
	}
	pins := Pins(bits)
	values := make([]int, len(pins))
	lines, err := gpiocdev.RequestLines(c.chip, pins,
		gpiocdev.AsOutput(values...),
		gpiocdev.WithConsumer(cdevConsumer))
	if err != nil {
		return errors.Wrapf(err, "failed to request output lines %v", pins)
	}
	c.mu.Lock()
	c.outputs = append(c.outputs, &cdevGroup{lines: lines, pins: pins, values: values})
	c.state &^= bits
	c.mu.Unlock()
	return nil
}

// SetInputs requests bits as inputs.
func (c *Cdev) SetInputs(bits uint32) error {
	if bits == 0 {
		return nil
	}
	pins := Pins(bits)
	lines, err := gpiocdev.RequestLines(c.chip, pins,
		gpiocdev.AsInput,
		gpiocdev.WithConsumer(cdevConsumer))
	if err != nil {
		return errors.Wrapf(err, "failed to request input lines %v", pins)
	}
	c.mu.Lock()
	c.inputs = append(c.inputs, &cdevGroup{lines: lines, pins: pins, values: make([]int, len(pins))})
	c.mu.Unlock()
	return nil
}

// SetBits drives bits high.
func (c *Cdev) SetBits(bits uint32) {
	c.write(c.state | bits)
}

// ClearBits drives bits low.
func (c *Cdev) ClearBits(bits uint32) {
	c.write(c.state &^ bits)
}

func (c *Cdev) write(state uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := c.state ^ state
	c.state = state
	for _, g := range c.outputs {
		dirty := false
		for i, pin := range g.pins {
			if changed&(1<<uint(pin)) == 0 {
				continue
			}
			dirty = true
			g.values[i] = int(state>>uint(pin)) & 1
		}
		if !dirty {
			continue
		}
		if err := g.lines.SetValues(g.values); err != nil && c.err == nil {
			c.err = errors.Wrapf(err, "failed to set lines %v", g.pins)
		}
	}
}

// Levels returns the driven state of output lines and the read level of
// input lines.
func (c *Cdev) Levels() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	levels := c.state
	for _, g := range c.inputs {
		if err := g.lines.Values(g.values); err != nil {
			if c.err == nil {
				c.err = errors.Wrapf(err, "failed to read lines %v", g.pins)
			}
			continue
		}
		for i, pin := range g.pins {
			if g.values[i] != 0 {
				levels |= 1 << uint(pin)
			} else {
				levels &^= 1 << uint(pin)
			}
		}
	}
	return levels
}

// Err returns the first write or read failure.
func (c *Cdev) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close releases all requested lines.
func (c *Cdev) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	for _, g := range append(c.outputs, c.inputs...) {
		if cerr := g.lines.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to release lines %v", g.pins)
		}
	}
	c.outputs = nil
	c.inputs = nil
	return err
}
