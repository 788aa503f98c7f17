package rgbmatrix

import (
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"

	"github.com/fkcurrie/hub75-golang/pkg/gpio"
	"github.com/fkcurrie/hub75-golang/pkg/hwmap"
	"github.com/fkcurrie/hub75-golang/pkg/pixelmap"
)

// BitPlanes is the number of PWM bits a colour channel is expanded to.
const BitPlanes = 11

// SlowdownAuto selects the default slowdown of the configured chip.
const SlowdownAuto = -1

// A panel is split into an upper and a lower half that are scanned together.
const subPanels = 2

// Direct row addressing has five address lines.
const maxDoubleRows = 32

// Config describes the panels, their wiring and the refresh timing.
type Config struct {
	// Rows and Cols are the visible size of one panel.
	Rows int
	Cols int
	// ChainLength is the number of daisy-chained panels.
	ChainLength int
	// Parallel is the number of chains driven at the same time.
	Parallel int

	// HardwareMapping names a hwmap preset.
	HardwareMapping string
	Multiplexing    pixelmap.Scheme
	// PixelMapper is a pixelmap.Parse description, applied after multiplexing.
	PixelMapper string
	RowSetter   RowSetter
	PanelType   PanelType
	LEDSequence LEDSequence

	// PWMBits is the number of bit-planes shown, counted from the most
	// significant one.
	PWMBits int
	// PWMLSB is the on-time of the least significant bit-plane.
	PWMLSB time.Duration
	// DitherBits is the number of low planes that are time dithered (0-2).
	DitherBits int
	// Slowdown repeats every register write; SlowdownAuto picks the chip default.
	Slowdown   int
	Interlaced bool
	// RefreshRate caps full refreshes per second. Zero runs unthrottled.
	RefreshRate int
	// Brightness in percent; 0 keeps the panel dark.
	Brightness int

	// Chip is the SoC whose registers are mapped. Required for BackendBCM.
	Chip      gpio.Chip
	Backend   Backend
	CdevChip  string
	SysfsRoot string
}

// DefaultConfig returns a single 64x64 panel on an Adafruit HAT with the PWM
// mod.
func DefaultConfig() Config {
	return Config{
		Rows:            64,
		Cols:            64,
		ChainLength:     1,
		Parallel:        1,
		HardwareMapping: "adafruit-hat-pwm",
		RowSetter:       RowDirect,
		LEDSequence:     RGB,
		PWMBits:         BitPlanes,
		PWMLSB:          130 * time.Nanosecond,
		Slowdown:        SlowdownAuto,
		RefreshRate:     120,
		Brightness:      100,
		Backend:         BackendBCM,
	}
}

// Validate checks every field that does not depend on the hardware mapping.
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInvalidConfig, format, args...)
	}
	if c.Rows <= 0 || c.Cols <= 0 {
		return invalid("panel size %dx%d", c.Cols, c.Rows)
	}
	stretch := c.Multiplexing.Stretch()
	if stretch == 0 {
		return invalid("multiplexing %v", c.Multiplexing)
	}
	if c.Rows%stretch != 0 {
		return invalid("%d rows cannot be multiplexed by %v", c.Rows, c.Multiplexing)
	}
	physRows, _ := c.Multiplexing.Physical(c.Rows, c.Cols)
	if physRows%subPanels != 0 || physRows/subPanels > maxDoubleRows {
		return invalid("%d scan rows per panel", physRows)
	}
	if c.ChainLength < 1 {
		return invalid("chain length %d", c.ChainLength)
	}
	if c.Parallel < 1 || c.Parallel > hwmap.MaxChains {
		return invalid("%d parallel chains", c.Parallel)
	}
	if c.PWMBits < 1 || c.PWMBits > BitPlanes {
		return invalid("pwm bits %d, want 1-%d", c.PWMBits, BitPlanes)
	}
	if c.PWMLSB <= 0 {
		return invalid("pwm lsb %v", c.PWMLSB)
	}
	if c.DitherBits < 0 || c.DitherBits > 2 {
		return invalid("dither bits %d, want 0-2", c.DitherBits)
	}
	if c.Slowdown < SlowdownAuto {
		return invalid("slowdown %d", c.Slowdown)
	}
	if c.RefreshRate < 0 {
		return invalid("refresh rate %d", c.RefreshRate)
	}
	if c.Brightness < 0 || c.Brightness > 100 {
		return invalid("brightness %d, want 0-100", c.Brightness)
	}
	if c.RowSetter < RowDirect || c.RowSetter > RowSM5266 {
		return invalid("row setter %v", c.RowSetter)
	}
	if c.RowSetter == RowDirectABCDLine && physRows/subPanels > 4 {
		return invalid("%v drives at most 4 scan rows", c.RowSetter)
	}
	if c.PanelType < PanelGeneric || c.PanelType > PanelFM6127 {
		return invalid("panel type %v", c.PanelType)
	}
	if c.LEDSequence < RGB || c.LEDSequence > BGR {
		return invalid("led sequence %v", c.LEDSequence)
	}
	if c.Backend < BackendBCM || c.Backend > BackendSysfs {
		return invalid("backend %v", c.Backend)
	}
	return nil
}

// slowdown resolves SlowdownAuto against the chip.
func (c *Config) slowdown() int {
	if c.Slowdown == SlowdownAuto {
		return c.Chip.DefaultSlowdown()
	}
	return c.Slowdown
}

// pipeline returns the multiplexing stage, if any, followed by the parsed
// pixel mapper.
func (c *Config) pipeline() (pixelmap.Pipeline, error) {
	var p pixelmap.Pipeline
	if c.Multiplexing != pixelmap.SchemeNone {
		p = append(p, pixelmap.Multiplex(c.Multiplexing, c.Rows, c.Cols))
	}
	named, err := pixelmap.Parse(c.PixelMapper, c.ChainLength, c.Parallel)
	if err != nil {
		return nil, err
	}
	return append(p, named...), nil
}

// RowSetter selects how the scan row address reaches the panel.
type RowSetter int

const (
	// RowDirect drives the A-E lines with the binary row number.
	RowDirect RowSetter = iota
	// RowShiftRegister clocks a single active row through a shift register
	// with clock on A and data on B.
	RowShiftRegister
	// RowDirectABCDLine pulls one of the A-D lines low per row.
	RowDirectABCDLine
	// RowABCShiftRegister is RowShiftRegister with data on C.
	RowABCShiftRegister
	// RowSM5266 feeds the SM5266 row driver: BK on C, DIN on B, DCK on A.
	RowSM5266
)

var rowSetterNames = [...]string{
	RowDirect:           "Direct",
	RowShiftRegister:    "ShiftRegister",
	RowDirectABCDLine:   "DirectABCDLine",
	RowABCShiftRegister: "ABCShiftRegister",
	RowSM5266:           "SM5266",
}

func (r RowSetter) String() string {
	if r < 0 || int(r) >= len(rowSetterNames) {
		return "Unknown"
	}
	return rowSetterNames[r]
}

// ParseRowSetter resolves a row setter name. The RowAddressSetter suffix is
// optional.
func ParseRowSetter(name string) (RowSetter, error) {
	n := strings.TrimSuffix(fold(name), "rowaddresssetter")
	if n == "" {
		return RowDirect, nil
	}
	for r, s := range rowSetterNames {
		if fold(s) == n {
			return RowSetter(r), nil
		}
	}
	return RowDirect, errors.Wrapf(ErrInvalidConfig, "unknown row setter %q", name)
}

// PanelType selects the driver chip initialisation run at startup.
type PanelType int

const (
	PanelGeneric PanelType = iota
	PanelFM6126
	PanelFM6127
)

func (p PanelType) String() string {
	switch p {
	case PanelGeneric:
		return ""
	case PanelFM6126:
		return "FM6126"
	case PanelFM6127:
		return "FM6127"
	}
	return "Unknown"
}

// ParsePanelType resolves a panel type. The empty string is a generic panel.
func ParsePanelType(name string) (PanelType, error) {
	switch fold(name) {
	case "", "generic":
		return PanelGeneric, nil
	case "fm6126", "fm6126a":
		return PanelFM6126, nil
	case "fm6127":
		return PanelFM6127, nil
	}
	return PanelGeneric, errors.Wrapf(ErrInvalidConfig, "unknown panel type %q", name)
}

// Backend selects how the GPIO lines are reached.
type Backend int

const (
	// BackendBCM writes the memory mapped GPIO registers. Fastest; needs root.
	BackendBCM Backend = iota
	// BackendCdev uses the GPIO character device.
	BackendCdev
	// BackendPeriph uses the periph.io host drivers.
	BackendPeriph
	// BackendSysfs uses /sys/class/gpio.
	BackendSysfs
)

var backendNames = [...]string{
	BackendBCM:    "bcm",
	BackendCdev:   "cdev",
	BackendPeriph: "periph",
	BackendSysfs:  "sysfs",
}

func (b Backend) String() string {
	if b < 0 || int(b) >= len(backendNames) {
		return "unknown"
	}
	return backendNames[b]
}

// ParseBackend resolves a backend name. The empty string is BackendBCM.
func ParseBackend(name string) (Backend, error) {
	n := fold(name)
	if n == "" || n == "mmap" {
		return BackendBCM, nil
	}
	for b, s := range backendNames {
		if s == n {
			return Backend(b), nil
		}
	}
	return BackendBCM, errors.Wrapf(ErrInvalidConfig, "unknown backend %q", name)
}

func fold(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
