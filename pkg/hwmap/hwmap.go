// Package hwmap describes how HUB75 signals are wired to Raspberry Pi GPIO
// pins. The presets match the common adapter boards pin for pin.
package hwmap

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/fkcurrie/hub75-golang/pkg/gpio"
)

// MaxChains is the number of parallel chains a mapping can describe.
const MaxChains = 6

// ErrUnknownMapping is returned by ByName for names without a preset.
var ErrUnknownMapping = errors.New("hwmap: unknown hardware mapping")

// ColorBits holds the data pins of one parallel chain. The 1 pins feed the
// upper half of each panel, the 2 pins the lower half.
type ColorBits struct {
	R1, G1, B1 uint32
	R2, G2, B2 uint32
}

// Used returns all data pins of the chain.
func (c ColorBits) Used() uint32 {
	return c.R1 | c.G1 | c.B1 | c.R2 | c.G2 | c.B2
}

// Mapping is the pin assignment of one adapter board.
type Mapping struct {
	Name string

	OutputEnable uint32
	Clock        uint32
	Strobe       uint32

	// Row address lines.
	A, B, C, D, E uint32

	Chains [MaxChains]ColorBits
}

// PanelBits returns the data pins of the first parallel chains.
func (m Mapping) PanelBits(parallel int) uint32 {
	var bits uint32
	for i := 0; i < parallel && i < MaxChains; i++ {
		bits |= m.Chains[i].Used()
	}
	return bits
}

// UsedBits returns every control and data pin the mapping defines. Row
// address lines are claimed separately by the row address setter.
func (m Mapping) UsedBits() uint32 {
	return m.OutputEnable | m.Clock | m.Strobe | m.PanelBits(MaxChains)
}

// ColorClockMask returns the pins touched while shifting in one column.
func (m Mapping) ColorClockMask(parallel int) uint32 {
	return m.PanelBits(parallel) | m.Clock
}

// MaxParallel returns the number of chains the mapping wires up.
func (m Mapping) MaxParallel() int {
	n := 0
	for _, c := range m.Chains {
		if c.Used() != 0 {
			n++
		}
	}
	return n
}

var presets = map[string]func() Mapping{
	"regular":          Regular,
	"adafruit-hat":     AdafruitHat,
	"adafruit-hat-pwm": AdafruitHatPWM,
	"regular-pi1":      RegularPi1,
	"classic":          Classic,
	"classic-pi1":      ClassicPi1,
}

func normalize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// ByName returns a copy of the named preset. Case and punctuation are
// ignored, so "AdafruitHatPwm" and "adafruit-hat-pwm" are the same.
func ByName(name string) (Mapping, error) {
	want := normalize(name)
	for preset, fn := range presets {
		if normalize(preset) == want {
			return fn(), nil
		}
	}
	return Mapping{}, errors.Wrapf(ErrUnknownMapping, "%q (known: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the preset names.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Regular is the pin-out of the common passive adapter boards. It supports
// three parallel chains on 40 pin headers.
func Regular() Mapping {
	return Mapping{
		Name:         "regular",
		OutputEnable: gpio.Bits(18),
		Clock:        gpio.Bits(17),
		Strobe:       gpio.Bits(4),

		A: gpio.Bits(22),
		B: gpio.Bits(23),
		C: gpio.Bits(24),
		D: gpio.Bits(25),
		E: gpio.Bits(15), // RxD, only used by 1:64 panels

		Chains: [MaxChains]ColorBits{
			{
				R1: gpio.Bits(11), G1: gpio.Bits(27), B1: gpio.Bits(7),
				R2: gpio.Bits(8), G2: gpio.Bits(9), B2: gpio.Bits(10),
			},
			{
				R1: gpio.Bits(12), G1: gpio.Bits(5), B1: gpio.Bits(6),
				R2: gpio.Bits(19), G2: gpio.Bits(13), B2: gpio.Bits(20),
			},
			{
				// Takes TxD, SCL and SDA.
				R1: gpio.Bits(14), G1: gpio.Bits(2), B1: gpio.Bits(3),
				R2: gpio.Bits(26), G2: gpio.Bits(16), B2: gpio.Bits(21),
			},
		},
	}
}

// AdafruitHat is the unmodified Adafruit RGB matrix HAT and bonnet.
func AdafruitHat() Mapping {
	return Mapping{
		Name:         "adafruit-hat",
		OutputEnable: gpio.Bits(4),
		Clock:        gpio.Bits(17),
		Strobe:       gpio.Bits(21),

		A: gpio.Bits(22),
		B: gpio.Bits(26),
		C: gpio.Bits(27),
		D: gpio.Bits(20),
		E: gpio.Bits(24), // needs a solder bridge

		Chains: [MaxChains]ColorBits{
			{
				R1: gpio.Bits(5), G1: gpio.Bits(13), B1: gpio.Bits(6),
				R2: gpio.Bits(12), G2: gpio.Bits(16), B2: gpio.Bits(23),
			},
		},
	}
}

// AdafruitHatPWM is the Adafruit HAT with GPIO 4 and 18 bridged so output
// enable can be driven by the PWM peripheral.
func AdafruitHatPWM() Mapping {
	m := AdafruitHat()
	m.Name = "adafruit-hat-pwm"
	m.OutputEnable = gpio.Bits(18)
	return m
}

// RegularPi1 is the regular pin-out for the Pi 1, where revision 1 boards
// route GPIO 21 to the pin later boards call GPIO 27.
func RegularPi1() Mapping {
	m := Regular()
	m.Name = "regular-pi1"
	m.Chains = [MaxChains]ColorBits{
		{
			R1: gpio.Bits(15, 27), G1: gpio.Bits(21), B1: gpio.Bits(7),
			R2: gpio.Bits(8), G2: gpio.Bits(9), B2: gpio.Bits(10),
		},
	}
	return m
}

// Classic is the historic default derived from the 26 pin header.
func Classic() Mapping {
	return Mapping{
		Name:         "classic",
		OutputEnable: gpio.Bits(27),
		Clock:        gpio.Bits(11),
		Strobe:       gpio.Bits(4),

		A: gpio.Bits(7),
		B: gpio.Bits(8),
		C: gpio.Bits(9),
		D: gpio.Bits(10),

		Chains: [MaxChains]ColorBits{
			{
				R1: gpio.Bits(17), G1: gpio.Bits(18), B1: gpio.Bits(22),
				R2: gpio.Bits(23), G2: gpio.Bits(24), B2: gpio.Bits(25),
			},
			{
				R1: gpio.Bits(12), G1: gpio.Bits(5), B1: gpio.Bits(6),
				R2: gpio.Bits(19), G2: gpio.Bits(13), B2: gpio.Bits(20),
			},
			{
				R1: gpio.Bits(14), G1: gpio.Bits(2), B1: gpio.Bits(3),
				R2: gpio.Bits(15), G2: gpio.Bits(26), B2: gpio.Bits(21),
			},
		},
	}
}

// ClassicPi1 is the classic pin-out for revision 1 and 2 Pi 1 boards, which
// differ on header pins 3 and 5.
func ClassicPi1() Mapping {
	return Mapping{
		Name:         "classic-pi1",
		OutputEnable: gpio.Bits(0, 2),
		Clock:        gpio.Bits(1, 3),
		Strobe:       gpio.Bits(4),

		A: gpio.Bits(7),
		B: gpio.Bits(8),
		C: gpio.Bits(9),
		D: gpio.Bits(10),

		Chains: [MaxChains]ColorBits{
			{
				R1: gpio.Bits(17), G1: gpio.Bits(18), B1: gpio.Bits(22),
				R2: gpio.Bits(23), G2: gpio.Bits(24), B2: gpio.Bits(25),
			},
		},
	}
}
