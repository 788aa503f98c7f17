package rgbmatrix

import (
	"github.com/pkg/errors"

	"github.com/fkcurrie/hub75-golang/internal/realtime"
	"github.com/fkcurrie/hub75-golang/pkg/gpio"
)

// GPIO 4 is the output enable of the unmodified Adafruit HAT. The PWM mod
// bridges it to GPIO 18, so it must stay an input unless the mapping uses it.
const hatOldOE = 4

// hardware is what New opened and Close releases.
type hardware struct {
	port gpio.Port
	bcm  *gpio.BCM
	// pulseClock times output enable pulses. The frame clock in options
	// may be the microsecond system timer, which is too coarse for them.
	pulseClock gpio.Clock
	closers    []func() error
}

func (h *hardware) close() error {
	var err error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if cerr := h.closers[i](); cerr != nil && err == nil {
			err = cerr
		}
	}
	h.closers = nil
	return err
}

// openHardware checks the host and opens the backend of cfg.
func openHardware(cfg *Config, host realtime.Host, o *options) (*hardware, error) {
	if cfg.Backend == BackendBCM && host.ModuleLoaded("snd_bcm2835") {
		return nil, ErrSoundModuleLoaded
	}

	h := &hardware{}
	if o.port != nil {
		h.port = o.port
	} else {
		var err error
		switch cfg.Backend {
		case BackendBCM:
			h.bcm, err = gpio.OpenBCM(cfg.Chip)
			h.port = h.bcm
		case BackendCdev:
			h.port, err = gpio.OpenCdev(cfg.CdevChip)
		case BackendPeriph:
			h.port, err = gpio.OpenPeriph()
		case BackendSysfs:
			h.port, err = gpio.OpenSysfs(cfg.SysfsRoot)
		default:
			err = errors.Wrapf(ErrInvalidConfig, "backend %v", cfg.Backend)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %v backend", cfg.Backend)
		}
	}
	h.closers = append(h.closers, h.port.Close)

	h.pulseClock = o.clock
	if h.pulseClock == nil {
		h.pulseClock = gpio.SystemClock{}
	}
	if o.clock == nil {
		o.clock = gpio.SystemClock{}
		if h.bcm != nil {
			timer, err := gpio.OpenTimer(cfg.Chip)
			if err != nil {
				h.close()
				return nil, errors.Wrap(err, "failed to open system timer")
			}
			o.clock = timer
			h.closers = append(h.closers, timer.Close)
		}
	}
	return h, nil
}

// claimOutputs configures the matrix pins as outputs, keeping GPIO 4 off
// limits when the mapping does not drive it.
func claimOutputs(bus *gpio.Bus, bcm *gpio.BCM, used uint32, host realtime.Host) error {
	oldOE := gpio.Bits(hatOldOE)
	if bcm != nil {
		for _, pin := range []int{hatOldOE, 18} {
			if err := bcm.SetFunction(pin, gpio.Input); err != nil {
				return err
			}
		}
	}
	bus.Reserve(oldOE &^ used)
	if used&oldOE != 0 && host.ModuleLoaded("w1_gpio") {
		return ErrOneWireEnabled
	}
	return bus.RequestOutputs(used)
}
