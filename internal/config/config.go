// Package config loads the YAML configuration of the hub75 command and turns
// it into a matrix configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fkcurrie/hub75-golang/pkg/gpio"
	"github.com/fkcurrie/hub75-golang/pkg/pixelmap"
	"github.com/fkcurrie/hub75-golang/pkg/rgbmatrix"
)

// ChipAuto detects the chip from /proc/cpuinfo.
const ChipAuto = "auto"

const cpuinfoPath = "/proc/cpuinfo"

// Display describes the panels and how they are wired.
type Display struct {
	Rows            int    `yaml:"rows"`
	Cols            int    `yaml:"cols"`
	ChainLength     int    `yaml:"chain_length"`
	Parallel        int    `yaml:"parallel"`
	HardwareMapping string `yaml:"hardware_mapping"`
	Multiplexing    string `yaml:"multiplexing,omitempty"`
	PixelMapper     string `yaml:"pixel_mapper,omitempty"`
	RowSetter       string `yaml:"row_setter"`
	PanelType       string `yaml:"panel_type,omitempty"`
	LEDSequence     string `yaml:"led_sequence"`
	Brightness      int    `yaml:"brightness"`
}

// Timing holds the refresh parameters.
type Timing struct {
	PWMBits     int           `yaml:"pwm_bits"`
	PWMLSB      time.Duration `yaml:"pwm_lsb"`
	DitherBits  int           `yaml:"dither_bits"`
	Slowdown    int           `yaml:"slowdown"` // -1 picks the chip default
	Interlaced  bool          `yaml:"interlaced"`
	RefreshRate int           `yaml:"refresh_rate"`
}

// GPIO selects the register backend.
type GPIO struct {
	Backend   string `yaml:"backend"` // bcm | cdev | periph | sysfs
	Chip      string `yaml:"chip"`
	CdevChip  string `yaml:"cdev_chip,omitempty"`
	SysfsRoot string `yaml:"sysfs_root,omitempty"`
	Inputs    []int  `yaml:"inputs,omitempty"`
	Realtime  bool   `yaml:"realtime"`
}

// Demo picks the scene the command shows.
type Demo struct {
	Scene string `yaml:"scene"` // patterns | square | text | svg
	FPS   int    `yaml:"fps"`
	Text  string `yaml:"text,omitempty"`
	SVG   string `yaml:"svg,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Display Display `yaml:"display"`
	Timing  Timing  `yaml:"timing"`
	GPIO    GPIO    `yaml:"gpio"`
	Demo    Demo    `yaml:"demo"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	m := rgbmatrix.DefaultConfig()
	return &Config{
		Display: Display{
			Rows:            m.Rows,
			Cols:            m.Cols,
			ChainLength:     m.ChainLength,
			Parallel:        m.Parallel,
			HardwareMapping: m.HardwareMapping,
			RowSetter:       m.RowSetter.String(),
			LEDSequence:     m.LEDSequence.String(),
			Brightness:      m.Brightness,
		},
		Timing: Timing{
			PWMBits:     m.PWMBits,
			PWMLSB:      m.PWMLSB,
			DitherBits:  m.DitherBits,
			Slowdown:    m.Slowdown,
			RefreshRate: m.RefreshRate,
		},
		GPIO: GPIO{
			Backend:  m.Backend.String(),
			Chip:     ChipAuto,
			Realtime: true,
		},
		Demo: Demo{
			Scene: "patterns",
			FPS:   30,
			Text:  "Hello, HUB75!",
		},
	}
}

// LoadConfig loads the configuration from a file. Missing keys keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return c, nil
}

// SaveConfig writes c to path as YAML.
func SaveConfig(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Matrix converts the configuration into a matrix configuration. root is
// prepended to /proc/cpuinfo when the chip is detected.
func (c *Config) Matrix(root string) (rgbmatrix.Config, error) {
	m := rgbmatrix.DefaultConfig()
	d, t, g := c.Display, c.Timing, c.GPIO

	m.Rows, m.Cols = d.Rows, d.Cols
	m.ChainLength, m.Parallel = d.ChainLength, d.Parallel
	m.HardwareMapping = d.HardwareMapping
	m.PixelMapper = d.PixelMapper
	m.Brightness = d.Brightness

	var err error
	if m.Multiplexing, err = pixelmap.ParseScheme(d.Multiplexing); err != nil {
		return m, err
	}
	if d.RowSetter != "" {
		if m.RowSetter, err = rgbmatrix.ParseRowSetter(d.RowSetter); err != nil {
			return m, err
		}
	}
	if d.PanelType != "" {
		if m.PanelType, err = rgbmatrix.ParsePanelType(d.PanelType); err != nil {
			return m, err
		}
	}
	if d.LEDSequence != "" {
		if m.LEDSequence, err = rgbmatrix.ParseLEDSequence(d.LEDSequence); err != nil {
			return m, err
		}
	}

	m.PWMBits = t.PWMBits
	m.PWMLSB = t.PWMLSB
	m.DitherBits = t.DitherBits
	m.Slowdown = t.Slowdown
	m.Interlaced = t.Interlaced
	m.RefreshRate = t.RefreshRate

	if m.Backend, err = rgbmatrix.ParseBackend(g.Backend); err != nil {
		return m, err
	}
	m.CdevChip = g.CdevChip
	m.SysfsRoot = g.SysfsRoot
	if m.Chip, err = c.chip(root, m.Backend); err != nil {
		return m, err
	}
	return m, m.Validate()
}

// chip resolves the configured chip. Detection failures only matter to the
// memory mapped backend.
func (c *Config) chip(root string, backend rgbmatrix.Backend) (gpio.Chip, error) {
	name := strings.TrimSpace(c.GPIO.Chip)
	if name != "" && !strings.EqualFold(name, ChipAuto) {
		return gpio.ParseChip(name)
	}
	f, err := os.Open(filepath.Join(root, cpuinfoPath))
	if err != nil {
		if backend == rgbmatrix.BackendBCM {
			return gpio.ChipUnknown, errors.Wrap(err, "failed to detect chip")
		}
		return gpio.ChipUnknown, nil
	}
	defer f.Close()
	chip, err := gpio.DetectChip(f)
	if err != nil && backend != rgbmatrix.BackendBCM {
		return gpio.ChipUnknown, nil
	}
	return chip, err
}

// InputBits returns the configured input pins as a bit mask.
func (c *Config) InputBits() uint32 {
	return gpio.Bits(c.GPIO.Inputs...)
}
