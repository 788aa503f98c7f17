package gpio

import (
	"time"
)

// Pulser lights the latched row for the duration of one bit-plane.
//
// SendPulse returns as soon as the pulse has started so the next row data can
// be shifted in while the current one is shown. WaitPulseFinished blocks until
// the output is dark again.
type Pulser interface {
	SendPulse(plane int)
	WaitPulseFinished()
	Close() error
}

// PlaneDurations returns the on-time of every bit-plane. The first
// ditherBits planes share the base duration, every following plane doubles.
func PlaneDurations(lsb time.Duration, planes, ditherBits int) []time.Duration {
	durations := make([]time.Duration, planes)
	d := lsb
	for b := range durations {
		durations[b] = d
		if b >= ditherBits {
			d *= 2
		}
	}
	return durations
}

// TimedPulser pulses an active low output enable line in software. Its clock
// must resolve well below the shortest plane duration; the BCM system timer
// only counts microseconds.
type TimedPulser struct {
	bus       *Bus
	clock     Clock
	pins      uint32
	durations []time.Duration
	deadline  time.Duration
	active    bool
}

// NewTimedPulser creates a pulser driving pins on bus and timing pulses with
// clock, leaving the pins disabled (high).
func NewTimedPulser(bus *Bus, clock Clock, pins uint32, durations []time.Duration) *TimedPulser {
	bus.SetBits(pins)
	return &TimedPulser{
		bus:       bus,
		clock:     clock,
		pins:      pins,
		durations: durations,
	}
}

// SendPulse enables the output for the duration of plane.
func (p *TimedPulser) SendPulse(plane int) {
	p.bus.ClearBits(p.pins)
	p.deadline = p.clock.Now() + p.durations[plane]
	p.active = true
}

// WaitPulseFinished waits out the running pulse and disables the output.
func (p *TimedPulser) WaitPulseFinished() {
	if !p.active {
		return
	}
	if remaining := p.deadline - p.clock.Now(); remaining > 0 {
		p.clock.Sleep(remaining)
	}
	p.bus.SetBits(p.pins)
	p.active = false
}

// Close finishes any pulse and leaves the output disabled.
func (p *TimedPulser) Close() error {
	p.WaitPulseFinished()
	p.bus.SetBits(p.pins)
	return nil
}
