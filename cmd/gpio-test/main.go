package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fkcurrie/hub75-golang/pkg/gpio"
	"github.com/fkcurrie/hub75-golang/pkg/hwmap"
	"github.com/fkcurrie/hub75-golang/pkg/rgbmatrix"
)

func main() {
	backendName := flag.String("backend", "cdev", "GPIO backend: bcm, cdev, periph, sysfs")
	chipName := flag.String("chip", "", "SoC for the bcm backend, detected from /proc/cpuinfo when empty")
	cdevChip := flag.String("cdev-chip", gpio.DefaultCdevChip, "GPIO character device")
	pin := flag.Int("pin", 5, "GPIO to toggle")
	signalName := flag.String("signal", "", "toggle a HUB75 signal of -mapping instead of -pin (oe, clk, lat, a-e, r1, g1, b1, r2, g2, b2)")
	mappingName := flag.String("mapping", "adafruit-hat-pwm", "hardware mapping used by -signal")
	interval := flag.Duration("interval", time.Second, "time between level changes")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	bits := gpio.Bits(*pin)
	if *signalName != "" {
		m, err := hwmap.ByName(*mappingName)
		if err != nil {
			log.Fatal().Err(err).Msg("unknown mapping")
		}
		if bits = signalBits(&m, *signalName); bits == 0 {
			log.Fatal().Str("signal", *signalName).Msg("unknown signal")
		}
	}

	port, err := open(*backendName, *chipName, *cdevChip)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open GPIO")
	}
	bus := gpio.NewBus(port, gpio.SystemClock{}, 0)
	defer bus.Close()
	if err := bus.RequestOutputs(bits); err != nil {
		log.Fatal().Err(err).Ints("pins", gpio.Pins(bits)).Msg("failed to request outputs")
	}
	log.Info().Str("backend", *backendName).Ints("pins", gpio.Pins(bits)).Msg("toggling")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	high := false
	for {
		select {
		case <-ctx.Done():
			bus.ClearBits(bits)
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
			high = !high
			if high {
				bus.SetBits(bits)
			} else {
				bus.ClearBits(bits)
			}
			log.Info().Bool("high", high).Msg("set level")
		}
	}
}

func open(name, chipName, cdevChip string) (gpio.Port, error) {
	backend, err := rgbmatrix.ParseBackend(name)
	if err != nil {
		return nil, err
	}
	switch backend {
	case rgbmatrix.BackendCdev:
		return gpio.OpenCdev(cdevChip)
	case rgbmatrix.BackendPeriph:
		return gpio.OpenPeriph()
	case rgbmatrix.BackendSysfs:
		return gpio.OpenSysfs("")
	}
	chip, err := detectChip(chipName)
	if err != nil {
		return nil, err
	}
	return gpio.OpenBCM(chip)
}

func detectChip(name string) (gpio.Chip, error) {
	if name != "" {
		return gpio.ParseChip(name)
	}
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return gpio.ChipUnknown, errors.Wrap(err, "failed to detect chip")
	}
	defer f.Close()
	return gpio.DetectChip(f)
}

func signalBits(m *hwmap.Mapping, name string) uint32 {
	c := m.Chains[0]
	return map[string]uint32{
		"oe": m.OutputEnable, "clk": m.Clock, "lat": m.Strobe,
		"a": m.A, "b": m.B, "c": m.C, "d": m.D, "e": m.E,
		"r1": c.R1, "g1": c.G1, "b1": c.B1,
		"r2": c.R2, "g2": c.G2, "b2": c.B2,
	}[name]
}
