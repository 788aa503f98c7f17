package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fkcurrie/hub75-golang/internal/config"
	"github.com/fkcurrie/hub75-golang/internal/demo"
	"github.com/fkcurrie/hub75-golang/pkg/rgbmatrix"
)

var (
	configPath  = flag.String("config", "", "path to a YAML config file")
	writeConfig = flag.String("write-config", "", "write the effective config to this path and exit")
	logLevel    = flag.String("log-level", "info", "log level: debug, info, warn, error")
	statsEvery  = flag.Duration("stats", 10*time.Second, "frame rate log interval, 0 to disable")

	// Flags below override the config file when given.
	rows         = flag.Int("rows", 64, "rows per panel")
	cols         = flag.Int("cols", 64, "columns per panel")
	chain        = flag.Int("chain", 1, "number of daisy-chained panels")
	parallel     = flag.Int("parallel", 1, "number of parallel chains")
	mapping      = flag.String("mapping", "adafruit-hat-pwm", "hardware mapping")
	multiplexing = flag.String("multiplexing", "", "multiplexing scheme of outdoor panels")
	pixelMapper  = flag.String("pixel-mapper", "", "pixel mappers, e.g. \"U-mapper;Rotate:90\"")
	rowSetter    = flag.String("row-setter", "direct", "row address setter")
	panelType    = flag.String("panel-type", "", "panel driver chip to initialise (FM6126, FM6127)")
	ledSequence  = flag.String("led-sequence", "RGB", "order of the colour channels on the panel")
	brightness   = flag.Int("brightness", 100, "brightness in percent")
	pwmBits      = flag.Int("pwm-bits", rgbmatrix.BitPlanes, "number of bit-planes shown")
	pwmLSB       = flag.Duration("pwm-lsb", 130*time.Nanosecond, "on-time of the least significant bit-plane")
	ditherBits   = flag.Int("dither-bits", 0, "time dithered low bit-planes (0-2)")
	slowdown     = flag.Int("slowdown", rgbmatrix.SlowdownAuto, "GPIO write repetitions, -1 for the chip default")
	interlaced   = flag.Bool("interlaced", false, "scan even rows first, then odd rows")
	refreshRate  = flag.Int("refresh-rate", 120, "refresh rate limit in Hz, 0 for none")
	backend      = flag.String("backend", "bcm", "GPIO backend: bcm, cdev, periph, sysfs")
	chip         = flag.String("chip", config.ChipAuto, "SoC: BCM2708, BCM2709, BCM2711 or auto")
	noRealtime   = flag.Bool("no-realtime", false, "do not pin or prioritise the render thread")
	scene        = flag.String("scene", "patterns", "scene: patterns, square, text, svg")
	fps          = flag.Int("fps", 30, "scene frame rate, 0 to follow the refresh")
	text         = flag.String("text", "Hello, HUB75!", "text of the text scene")
	svg          = flag.String("svg", "", "SVG file of the svg scene")
)

func main() {
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", *logLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("hub75 failed")
	}
}

func run() error {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		c, err := config.LoadConfig(*configPath)
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		cfg = c
	}
	applyFlags(cfg)

	if *writeConfig != "" {
		if err := config.SaveConfig(*writeConfig, cfg); err != nil {
			return errors.Wrap(err, "failed to write config")
		}
		log.Info().Str("path", *writeConfig).Msg("config written")
		return nil
	}

	mcfg, err := cfg.Matrix("")
	if err != nil {
		return err
	}
	opts := []rgbmatrix.Option{rgbmatrix.WithInputs(cfg.InputBits())}
	if !cfg.GPIO.Realtime {
		opts = append(opts, rgbmatrix.WithoutRealtime())
	}
	m, err := rgbmatrix.New(mcfg, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to initialise matrix")
	}
	defer m.Close()

	s, err := demo.ByName(cfg.Demo.Scene, demo.Options{
		Width:  m.Width(),
		Height: m.Height(),
		Text:   cfg.Demo.Text,
		SVG:    cfg.Demo.SVG,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	log.Info().
		Str("scene", cfg.Demo.Scene).
		Int("width", m.Width()).
		Int("height", m.Height()).
		Msg("starting")
	g.Go(func() error {
		return demo.Run(ctx, m.Canvas(), s, cfg.Demo.FPS)
	})
	g.Go(func() error {
		monitor(ctx, m, *statsEvery)
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("shutting down")
		err = nil
	}
	if cerr := m.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "failed to close matrix")
	}
	return err
}

// monitor logs the frame rate and input pin changes until ctx is done.
func monitor(ctx context.Context, m *rgbmatrix.Matrix, every time.Duration) {
	var tick <-chan time.Time
	if every > 0 {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			log.Info().Float64("fps", m.FrameRate()).Msg("frame rate")
		case in := <-m.Inputs():
			log.Info().Str("inputs", binary(in)).Msg("input pins changed")
		}
	}
}

func binary(bits uint32) string {
	return "0b" + strconv.FormatUint(uint64(bits), 2)
}

// applyFlags copies the flags given on the command line over cfg.
func applyFlags(cfg *config.Config) {
	d, t, g, s := &cfg.Display, &cfg.Timing, &cfg.GPIO, &cfg.Demo
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rows":
			d.Rows = *rows
		case "cols":
			d.Cols = *cols
		case "chain":
			d.ChainLength = *chain
		case "parallel":
			d.Parallel = *parallel
		case "mapping":
			d.HardwareMapping = *mapping
		case "multiplexing":
			d.Multiplexing = *multiplexing
		case "pixel-mapper":
			d.PixelMapper = *pixelMapper
		case "row-setter":
			d.RowSetter = *rowSetter
		case "panel-type":
			d.PanelType = *panelType
		case "led-sequence":
			d.LEDSequence = *ledSequence
		case "brightness":
			d.Brightness = *brightness
		case "pwm-bits":
			t.PWMBits = *pwmBits
		case "pwm-lsb":
			t.PWMLSB = *pwmLSB
		case "dither-bits":
			t.DitherBits = *ditherBits
		case "slowdown":
			t.Slowdown = *slowdown
		case "interlaced":
			t.Interlaced = *interlaced
		case "refresh-rate":
			t.RefreshRate = *refreshRate
		case "backend":
			g.Backend = *backend
		case "chip":
			g.Chip = *chip
		case "no-realtime":
			g.Realtime = !*noRealtime
		case "scene":
			s.Scene = *scene
		case "fps":
			s.FPS = *fps
		case "text":
			s.Text = *text
		case "svg":
			s.SVG = *svg
		}
	})
}
