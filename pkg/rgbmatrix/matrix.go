// Package rgbmatrix drives chains of HUB75 RGB LED panels from the Raspberry
// Pi GPIO header.
//
// New validates a Config, claims the pins and starts a render loop on a
// dedicated OS thread that refreshes the panels continuously with binary
// code modulation. Drawing happens on the Canvas back buffer; Swap encodes
// it into bit-planes and hands it to the render loop.
package rgbmatrix

import (
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fkcurrie/hub75-golang/internal/realtime"
	"github.com/fkcurrie/hub75-golang/pkg/gpio"
	"github.com/fkcurrie/hub75-golang/pkg/hwmap"
	"github.com/fkcurrie/hub75-golang/pkg/pixelmap"
)

// Matrix owns the GPIO pins and the render loop.
type Matrix struct {
	cfg     Config
	mapping hwmap.Mapping
	geo     geometry
	table   *pixelmap.Table
	log     zerolog.Logger

	hw     *hardware
	bus    *gpio.Bus
	pulser gpio.Pulser
	scan   *scanner

	canvas *Canvas
	ex     *exchange
	fps    *frameRate

	period   time.Duration
	dither   [4]int
	realtime bool
	host     realtime.Host

	inputBits uint32
	inputs    chan uint32

	quit      chan struct{}
	closeOnce sync.Once
	closeErr  error
	// Set by the render loop before it exits.
	blankErr error
}

// New validates cfg, sets up the pins and panels and starts refreshing.
func New(cfg Config, opts ...Option) (*Matrix, error) {
	o := options{realtime: true}
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.Logger.With().Str("component", "rgbmatrix").Logger()
	if o.logger != nil {
		logger = *o.logger
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mapping, err := hwmap.ByName(cfg.HardwareMapping)
	if err != nil {
		return nil, err
	}
	if n := mapping.MaxParallel(); cfg.Parallel > n {
		return nil, errors.Wrapf(ErrTooManyParallel, "%s supports %d", mapping.Name, n)
	}

	geo := newGeometry(&cfg)
	pipeline, err := cfg.pipeline()
	if err != nil {
		return nil, err
	}
	table, err := pipeline.Resolve(geo.width, geo.height)
	if err != nil {
		return nil, err
	}

	hw, err := openHardware(&cfg, o.host, &o)
	if err != nil {
		return nil, err
	}
	m := &Matrix{
		cfg:      cfg,
		mapping:  mapping,
		geo:      geo,
		table:    table,
		log:      logger,
		hw:       hw,
		fps:      newFrameRate(),
		period:   framePeriod(cfg.RefreshRate),
		dither:   ditherStart(cfg.DitherBits),
		realtime: o.realtime,
		host:     o.host,
		inputs:   make(chan uint32, 1),
		quit:     make(chan struct{}),
	}
	if err := m.setup(&o); err != nil {
		hw.close()
		return nil, err
	}

	ds := designators(geo, &mapping, cfg.LEDSequence, table)
	enc := newEncoder(ds, cfg.PWMBits)
	shown, spare, recycled := newFrame(geo), newFrame(geo), newFrame(geo)
	m.ex = newExchange(recycled)
	m.canvas = newCanvas(table.Width(), table.Height(), cfg.Brightness, enc, m.ex, spare)
	m.canvas.fps = m.fps

	m.log.Info().
		Str("mapping", mapping.Name).
		Int("width", table.Width()).
		Int("height", table.Height()).
		Str("pixel_mapper", pipeline.String()).
		Int("slowdown", m.bus.Slowdown()).
		Msg("matrix ready")

	started := make(chan struct{})
	go m.run(shown, started)
	<-started
	return m, nil
}

func (m *Matrix) setup(o *options) error {
	cfg := &m.cfg
	m.bus = gpio.NewBus(m.hw.port, o.clock, cfg.slowdown())
	rows := newRowAddresser(cfg.RowSetter, &m.mapping, m.geo.doubleRows)

	if err := claimOutputs(m.bus, m.hw.bcm, m.mapping.UsedBits()|rows.UsedBits(), m.host); err != nil {
		return err
	}

	pulser, err := m.newPulser(o)
	if err != nil {
		return err
	}
	m.pulser = pulser

	initPanels(cfg.PanelType, m.bus, &m.mapping, cfg.Parallel, m.geo.width)

	if m.inputBits, err = m.bus.RequestInputs(o.inputs); err != nil {
		pulser.Close()
		return err
	}

	m.scan = &scanner{
		bus:        m.bus,
		pulser:     pulser,
		rows:       rows,
		clock:      m.mapping.Clock,
		strobe:     m.mapping.Strobe,
		colorClock: m.mapping.ColorClockMask(cfg.Parallel),
		order:      scanOrder(m.geo.doubleRows, cfg.Interlaced),
		minPlane:   BitPlanes - cfg.PWMBits,
	}
	return nil
}

func (m *Matrix) newPulser(o *options) (gpio.Pulser, error) {
	if o.pulser != nil {
		return o.pulser, nil
	}
	durations := gpio.PlaneDurations(m.cfg.PWMLSB, BitPlanes, m.cfg.DitherBits)
	oe := m.mapping.OutputEnable
	if m.hw.bcm != nil && gpio.HasHardwarePulse(oe) {
		p, err := gpio.OpenPWMPulser(m.cfg.Chip, m.hw.bcm, oe, durations, m.hw.pulseClock)
		if err == nil {
			return p, nil
		}
		m.log.Warn().Err(err).Msg("hardware pulses unavailable, timing output enable in software")
	}
	return gpio.NewTimedPulser(m.bus, m.hw.pulseClock, oe, durations), nil
}

// cores returns the number of cores of the configured chip.
func (m *Matrix) cores() int {
	if m.cfg.Chip == gpio.ChipUnknown {
		return runtime.NumCPU()
	}
	return m.cfg.Chip.Cores()
}

func (m *Matrix) run(cur *Frame, started chan<- struct{}) {
	defer close(m.ex.done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if m.realtime {
		core := m.cores() - 1
		m.host.Setup(m.log, core, m.cores())
		m.host.Advise(m.log, core)
	}
	close(started)

	clock := m.bus.Clock()
	var lastInputs uint32
	for cycle := 0; ; cycle++ {
		select {
		case <-m.quit:
			m.blank(cur)
			return
		default:
		}
		start := clock.Now()

		cur = m.ex.take(cur)
		if m.inputBits != 0 {
			if in := m.bus.Read(); in != lastInputs {
				select {
				case m.inputs <- in:
					lastInputs = in
				default:
				}
			}
		}

		m.scan.dump(cur, m.dither[cycle%len(m.dither)])

		if m.period > 0 {
			if remaining := start + m.period - clock.Now(); remaining > 0 {
				clock.Sleep(remaining)
			}
		}
	}
}

// blank shows an all black frame and leaves the output disabled.
func (m *Matrix) blank(f *Frame) {
	f.clear()
	m.scan.dump(f, 0)
	m.pulser.WaitPulseFinished()
	m.blankErr = m.pulser.Close()
	m.bus.SetBits(m.mapping.OutputEnable)
}

// Canvas returns the drawing surface.
func (m *Matrix) Canvas() *Canvas {
	return m.canvas
}

// Width returns the logical width after pixel mapping.
func (m *Matrix) Width() int {
	return m.table.Width()
}

// Height returns the logical height after pixel mapping.
func (m *Matrix) Height() int {
	return m.table.Height()
}

// Mapping returns the resolved pixel mapping.
func (m *Matrix) Mapping() *pixelmap.Table {
	return m.table
}

// EnabledInputs returns the input pins that were granted.
func (m *Matrix) EnabledInputs() uint32 {
	return m.inputBits
}

// Inputs delivers the input pin levels whenever they change.
func (m *Matrix) Inputs() <-chan uint32 {
	return m.inputs
}

// FrameRate returns the average number of swaps per second over the last
// 60 frames.
func (m *Matrix) FrameRate() float64 {
	return m.fps.fps()
}

// Close stops the render loop, blanks the panels and releases the pins. It is
// safe to call more than once.
func (m *Matrix) Close() error {
	m.closeOnce.Do(func() {
		close(m.quit)
		<-m.ex.done
		err := m.hw.close()
		if m.blankErr != nil {
			err = m.blankErr
		}
		m.closeErr = err
		m.log.Info().Msg("matrix closed")
	})
	return m.closeErr
}
