package rgbmatrix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkcurrie/hub75-golang/pkg/gpio"
	"github.com/fkcurrie/hub75-golang/pkg/gpio/gpiotest"
	"github.com/fkcurrie/hub75-golang/pkg/hwmap"
)

const testLSB = 100 * time.Nanosecond

// pulse is one lit period as seen by a panel.
type pulse struct {
	row      int
	start    time.Duration
	duration time.Duration
	columns  []uint32
}

// panelSim follows the pins the way a HUB75 panel does: data is shifted on
// the rising clock edge, latched by the strobe and shown while OE is low.
type panelSim struct {
	m     hwmap.Mapping
	clock *gpiotest.Clock

	shift   []uint32
	latched []uint32
	pulses  []pulse
	// Only the last keep pulses are kept when set.
	keep int

	// Changes of the row address or latch while lit.
	violations int
}

func newPanelSim(m hwmap.Mapping, rec *gpiotest.Recorder, clock *gpiotest.Clock) *panelSim {
	p := &panelSim{m: m, clock: clock}
	rec.Watch(p.observe)
	return p
}

func (p *panelSim) row(levels uint32) int {
	row := 0
	for i, line := range []uint32{p.m.A, p.m.B, p.m.C, p.m.D, p.m.E} {
		if levels&line != 0 {
			row |= 1 << uint(i)
		}
	}
	return row
}

func (p *panelSim) observe(prev, next uint32) {
	rose := func(bits uint32) bool { return prev&bits == 0 && next&bits != 0 }
	fell := func(bits uint32) bool { return prev&bits != 0 && next&bits == 0 }
	lit := prev&p.m.OutputEnable == 0 && next&p.m.OutputEnable == 0
	address := p.m.A | p.m.B | p.m.C | p.m.D | p.m.E

	if lit && ((prev^next)&address != 0 || rose(p.m.Strobe)) {
		p.violations++
	}
	if rose(p.m.Clock) {
		p.shift = append(p.shift, next&p.m.PanelBits(hwmap.MaxChains))
	}
	if rose(p.m.Strobe) {
		p.latched, p.shift = p.shift, nil
	}
	if fell(p.m.OutputEnable) {
		p.pulses = append(p.pulses, pulse{
			row:     p.row(next),
			start:   p.clock.Now(),
			columns: p.latched,
		})
		if p.keep > 0 && len(p.pulses) > 2*p.keep {
			p.pulses = append(p.pulses[:0], p.pulses[len(p.pulses)-p.keep:]...)
		}
	}
	if rose(p.m.OutputEnable) && len(p.pulses) > 0 {
		last := &p.pulses[len(p.pulses)-1]
		last.duration = p.clock.Now() - last.start
	}
}

type scanFixture struct {
	*encoderFixture
	scan  *scanner
	sim   *panelSim
	rec   *gpiotest.Recorder
	clock *gpiotest.Clock
}

func newScanFixture(t *testing.T, cfg Config) *scanFixture {
	t.Helper()
	fx := newEncoderFixture(t, cfg)
	rec := gpiotest.NewRecorder()
	clock := &gpiotest.Clock{}
	bus := gpio.NewBus(rec, clock, 0)
	durations := gpio.PlaneDurations(testLSB, BitPlanes, cfg.DitherBits)
	pulser := gpio.NewTimedPulser(bus, clock, fx.mapping.OutputEnable, durations)
	return &scanFixture{
		encoderFixture: fx,
		scan: &scanner{
			bus:        bus,
			pulser:     pulser,
			rows:       newRowAddresser(cfg.RowSetter, &fx.mapping, fx.geo.doubleRows),
			clock:      fx.mapping.Clock,
			strobe:     fx.mapping.Strobe,
			colorClock: fx.mapping.ColorClockMask(cfg.Parallel),
			order:      scanOrder(fx.geo.doubleRows, cfg.Interlaced),
			minPlane:   BitPlanes - cfg.PWMBits,
		},
		sim:   newPanelSim(fx.mapping, rec, clock),
		rec:   rec,
		clock: clock,
	}
}

func TestScanShowsEveryRowAndPlane(t *testing.T) {
	fx := newScanFixture(t, smallConfig())
	f := fx.encode(func(px []Pixel, w int) {
		px[0] = Pixel{R: 255}
		px[17*w+3] = Pixel{G: 255}
	})
	fx.scan.dump(f, 0)
	fx.scan.pulser.WaitPulseFinished()

	pulses := fx.sim.pulses
	require.Len(t, pulses, 16*BitPlanes)
	assert.Zero(t, fx.sim.violations)

	chain := fx.mapping.Chains[0]
	for i, p := range pulses {
		row, plane := i/BitPlanes, i%BitPlanes
		require.Equal(t, row, p.row)
		require.Len(t, p.columns, 32)
		assert.Equal(t, testLSB<<uint(plane), p.duration, "row %d plane %d", row, plane)
		for col, bits := range p.columns {
			var want uint32
			switch {
			case row == 0 && col == 0:
				want = chain.R1
			case row == 1 && col == 3:
				want = chain.G2
			}
			assert.Equal(t, want, bits, "row %d plane %d col %d", row, plane, col)
		}
	}
	assert.NotZero(t, fx.rec.Levels()&fx.mapping.OutputEnable, "dark after the last pulse")
}

func TestScanInterlaced(t *testing.T) {
	cfg := smallConfig()
	cfg.Interlaced = true
	fx := newScanFixture(t, cfg)
	fx.scan.dump(newFrame(fx.geo), 0)

	var rows []int
	for i := 0; i < len(fx.sim.pulses); i += BitPlanes {
		rows = append(rows, fx.sim.pulses[i].row)
	}
	assert.Equal(t, []int{0, 2, 4, 6, 8, 10, 12, 14, 1, 3, 5, 7, 9, 11, 13, 15}, rows)
	assert.Zero(t, fx.sim.violations)
}

func TestScanSkipsPlanes(t *testing.T) {
	tests := []struct {
		name      string
		pwmBits   int
		lowPlane  int
		perRow    int
		firstSpan time.Duration
	}{
		{"all", 11, 0, 11, testLSB},
		{"pwm bits", 7, 0, 7, testLSB << 4},
		{"dither", 11, 2, 9, testLSB << 2},
		{"pwm bits win", 7, 2, 7, testLSB << 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.PWMBits = tt.pwmBits
			fx := newScanFixture(t, cfg)
			fx.scan.dump(newFrame(fx.geo), tt.lowPlane)
			fx.scan.pulser.WaitPulseFinished()

			require.Len(t, fx.sim.pulses, 16*tt.perRow)
			assert.Equal(t, tt.firstSpan, fx.sim.pulses[0].duration)
			assert.Equal(t, testLSB<<10, fx.sim.pulses[tt.perRow-1].duration)
		})
	}
}

func TestScanAddressOnlyChangesWhileDark(t *testing.T) {
	for _, kind := range []RowSetter{RowShiftRegister, RowABCShiftRegister, RowSM5266} {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := smallConfig()
			cfg.RowSetter = kind
			fx := newScanFixture(t, cfg)
			fx.scan.dump(newFrame(fx.geo), 0)
			assert.Zero(t, fx.sim.violations)
			assert.Len(t, fx.sim.pulses, 16*BitPlanes)
		})
	}
}
