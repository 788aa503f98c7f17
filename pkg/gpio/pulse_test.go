package gpio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkcurrie/hub75-golang/pkg/gpio"
	"github.com/fkcurrie/hub75-golang/pkg/gpio/gpiotest"
)

func TestPlaneDurations(t *testing.T) {
	lsb := 130 * time.Nanosecond
	tests := []struct {
		name       string
		ditherBits int
		want       []time.Duration
	}{
		{name: "no dither", ditherBits: 0, want: []time.Duration{lsb, 2 * lsb, 4 * lsb, 8 * lsb}},
		{name: "one dither bit", ditherBits: 1, want: []time.Duration{lsb, lsb, 2 * lsb, 4 * lsb}},
		{name: "two dither bits", ditherBits: 2, want: []time.Duration{lsb, lsb, lsb, 2 * lsb}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gpio.PlaneDurations(lsb, 4, tt.ditherBits))
		})
	}
}

func TestTimedPulser(t *testing.T) {
	oe := gpio.Bits(18)
	rec := gpiotest.NewRecorder()
	clock := &gpiotest.Clock{}
	bus := gpio.NewBus(rec, clock, 0)
	durations := gpio.PlaneDurations(time.Microsecond, 3, 0)

	p := gpio.NewTimedPulser(bus, clock, oe, durations)
	assert.Equal(t, oe, rec.Levels(), "output starts disabled")

	p.SendPulse(2)
	assert.Zero(t, rec.Levels()&oe, "output enabled during pulse")

	start := clock.Now()
	p.WaitPulseFinished()
	assert.Equal(t, 4*time.Microsecond, clock.Now()-start)
	assert.Equal(t, oe, rec.Levels()&oe)

	// Nothing to wait for.
	before := clock.Now()
	p.WaitPulseFinished()
	assert.Equal(t, before, clock.Now())

	p.SendPulse(0)
	clock.Advance(10 * time.Microsecond)
	require.NoError(t, p.Close())
	assert.Equal(t, oe, rec.Levels()&oe)
}

// coarseClock only reports whole microseconds, like the BCM system timer.
type coarseClock struct {
	fine *gpiotest.Clock
}

func (c coarseClock) Now() time.Duration {
	return c.fine.Now().Truncate(time.Microsecond)
}

func (c coarseClock) Sleep(d time.Duration) {
	end := c.Now() + d
	for c.Now() < end {
		c.fine.Advance(time.Microsecond - c.fine.Now()%time.Microsecond)
	}
}

func TestTimedPulserIgnoresCoarseBusClock(t *testing.T) {
	oe := gpio.Bits(4)
	rec := gpiotest.NewRecorder()
	fine := &gpiotest.Clock{}
	bus := gpio.NewBus(rec, coarseClock{fine: fine}, 0)
	durations := gpio.PlaneDurations(130*time.Nanosecond, 4, 0)

	p := gpio.NewTimedPulser(bus, fine, oe, durations)
	var start time.Duration
	var lit []time.Duration
	rec.Watch(func(prev, next uint32) {
		switch {
		case prev&oe != 0 && next&oe == 0:
			start = fine.Now()
		case prev&oe == 0 && next&oe != 0:
			lit = append(lit, fine.Now()-start)
		}
	})

	for plane := range durations {
		fine.Advance(333 * time.Nanosecond)
		p.SendPulse(plane)
		p.WaitPulseFinished()
	}

	require.Len(t, lit, len(durations))
	assert.Equal(t, durations, lit)
	for plane := 1; plane < len(lit); plane++ {
		assert.Greater(t, lit[plane], lit[plane-1], "plane %d", plane)
	}
}
