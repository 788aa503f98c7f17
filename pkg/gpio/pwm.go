package gpio

import (
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/fkcurrie/hub75-golang/pkg/mmap"
)

// PWM and clock manager registers.
const (
	pwmOffset = 0x20C000
	pwmSize   = 32
	pwmCTL    = 0x00
	pwmSTA    = 0x04
	pwmRNG1   = 0x10
	pwmFIF1   = 0x18

	pwmSTAEmpty1 = 1 << 1
	pwmCTLPWEN1  = 1 << 0
	pwmCTLPOLA1  = 1 << 4
	pwmCTLUSEF1  = 1 << 5
	pwmCTLCLRF1  = 1 << 6

	cmOffset  = 0x101000
	cmSize    = 452
	cmPasswd  = 0x5A << 24
	cmPWMCTL  = 0xA0
	cmPWMDIV  = 0xA4
	cmEnable  = 1 << 4
	cmKill    = 1 << 5
	cmSrcPLLD = 6 // 500 MHz

	// Nanoseconds per PWM clock tick at divider 1.
	pwmBaseTimeNS = 2
	maxDivider    = 1 << 12
)

// PWMPulser drives output enable from the PWM0 channel so pulse lengths do
// not depend on the CPU. Only GPIO 18 (Alt5) and GPIO 12 (Alt0) carry PWM0.
type PWMPulser struct {
	pwm   *mmap.MemoryMap
	cm    *mmap.MemoryMap
	bcm   *BCM
	clock Clock
	pin   int

	sleepHints []time.Duration
	periods    []uint32

	start  time.Duration
	hint   time.Duration
	active bool
}

// HasHardwarePulse reports whether pins can be driven by PWM0.
func HasHardwarePulse(pins uint32) bool {
	return pins == Bits(18) || pins == Bits(12)
}

// OpenPWMPulser maps the PWM and clock manager blocks of chip and programs
// them for the given bit-plane durations.
func OpenPWMPulser(chip Chip, bcm *BCM, pins uint32, durations []time.Duration, clock Clock) (*PWMPulser, error) {
	if chip == ChipUnknown {
		return nil, errors.Wrap(ErrUnknownChip, "PWM access needs a known chip")
	}
	pwm, err := mmap.NewMemoryMap(chip.PeripheralBase()+pwmOffset, pwmSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map PWM registers")
	}
	cm, err := mmap.NewMemoryMap(chip.PeripheralBase()+cmOffset, cmSize)
	if err != nil {
		pwm.Close()
		return nil, errors.Wrap(err, "failed to map clock manager registers")
	}
	p, err := NewPWMPulser(pwm, cm, bcm, pins, durations, clock)
	if err != nil {
		pwm.Close()
		cm.Close()
		return nil, err
	}
	return p, nil
}

// NewPWMPulser programs already mapped PWM and clock manager blocks.
func NewPWMPulser(pwm, cm *mmap.MemoryMap, bcm *BCM, pins uint32, durations []time.Duration, clock Clock) (*PWMPulser, error) {
	var pin int
	var fn Function
	switch pins {
	case Bits(18):
		pin, fn = 18, Alt5
	case Bits(12):
		pin, fn = 12, Alt0
	default:
		return nil, errors.Wrapf(ErrNoHardwarePulse, "pins %v", Pins(pins))
	}
	if len(durations) == 0 {
		return nil, errors.Wrap(ErrPulseTiming, "no bit-plane durations")
	}

	base := uint32(durations[0].Nanoseconds())
	divider := (base / 2) / pwmBaseTimeNS
	if divider == 0 || divider >= maxDivider {
		return nil, errors.Wrapf(ErrPulseTiming, "lsb %v needs PWM divider %d", durations[0], divider)
	}

	p := &PWMPulser{
		pwm:   pwm,
		cm:    cm,
		bcm:   bcm,
		clock: clock,
		pin:   pin,
	}
	for _, d := range durations {
		p.sleepHints = append(p.sleepHints, d.Truncate(time.Microsecond))
		p.periods = append(p.periods, 2*uint32(d.Nanoseconds())/base)
	}

	if err := bcm.SetFunction(pin, fn); err != nil {
		return nil, err
	}
	p.reset()
	p.initDivider(divider)
	return p, nil
}

func (p *PWMPulser) reset() {
	p.pwm.Write32(pwmCTL, pwmCTLUSEF1|pwmCTLPOLA1|pwmCTLCLRF1)
}

func (p *PWMPulser) enable() {
	p.pwm.Write32(pwmCTL, pwmCTLUSEF1|pwmCTLPOLA1|pwmCTLPWEN1)
}

func (p *PWMPulser) initDivider(divider uint32) {
	p.cm.Write32(cmPWMCTL, cmPasswd|cmKill)
	p.cm.Write32(cmPWMCTL, cmPasswd|cmSrcPLLD)
	p.cm.Write32(cmPWMDIV, cmPasswd|divider<<12)
	p.cm.Write32(cmPWMCTL, cmPasswd|cmEnable|cmSrcPLLD)
}

func (p *PWMPulser) fifoEmpty() bool {
	return p.pwm.Read32(pwmSTA)&pwmSTAEmpty1 != 0
}

// SendPulse queues the on-time of plane into the PWM FIFO and starts it.
func (p *PWMPulser) SendPulse(plane int) {
	period := p.periods[plane]
	if period < 16 {
		p.pwm.Write32(pwmRNG1, period)
		p.pwm.Write32(pwmFIF1, period)
	} else {
		// Long pulses are split into eight short ranges; the zero phase lasts
		// one full range, so keep it short.
		fraction := period / 8
		p.pwm.Write32(pwmRNG1, fraction)
		for i := 0; i < 8; i++ {
			p.pwm.Write32(pwmFIF1, fraction)
		}
	}
	// Two sentinels: one to return to idle, one so that the empty flag only
	// rises once the pulse is really over.
	p.pwm.Write32(pwmFIF1, 0)
	p.pwm.Write32(pwmFIF1, 0)

	p.start = p.clock.Now()
	p.hint = p.sleepHints[plane]
	p.active = true
	p.enable()
}

// WaitPulseFinished sleeps through most of the pulse and spins on the FIFO
// empty flag for the rest.
func (p *PWMPulser) WaitPulseFinished() {
	if !p.active {
		return
	}
	if remaining := p.hint - (p.clock.Now() - p.start); remaining > 0 {
		SleepAtMost(remaining)
	}
	for !p.fifoEmpty() {
		runtime.Gosched()
	}
	p.reset()
	p.active = false
}

// Close stops the PWM channel and returns the pin to a plain output.
func (p *PWMPulser) Close() error {
	p.WaitPulseFinished()
	p.reset()
	err := p.bcm.SetFunction(p.pin, Output)
	p.pwm.Close()
	p.cm.Close()
	return err
}
