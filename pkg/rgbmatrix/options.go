package rgbmatrix

import (
	"github.com/rs/zerolog"

	"github.com/fkcurrie/hub75-golang/internal/realtime"
	"github.com/fkcurrie/hub75-golang/pkg/gpio"
)

// Option customises New.
type Option func(*options)

type options struct {
	port     gpio.Port
	clock    gpio.Clock
	pulser   gpio.Pulser
	logger   *zerolog.Logger
	inputs   uint32
	realtime bool
	host     realtime.Host
}

// WithPort drives the given port instead of opening Config.Backend. The
// matrix takes ownership and closes it.
func WithPort(p gpio.Port) Option {
	return func(o *options) { o.port = p }
}

// WithClock sets the clock used for pulses and frame pacing. Without it the
// BCM backend paces frames on the system timer and times pulses on the
// runtime clock.
func WithClock(c gpio.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithPulser sets the output enable pulser. The matrix takes ownership.
func WithPulser(p gpio.Pulser) Option {
	return func(o *options) { o.pulser = p }
}

// WithLogger sets the logger for setup messages.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithInputs requests spare pins to be read every refresh cycle. Pins in use
// by the matrix are dropped; see Matrix.EnabledInputs.
func WithInputs(bits uint32) Option {
	return func(o *options) { o.inputs = bits }
}

// WithoutRealtime skips pinning and prioritising the render thread.
func WithoutRealtime() Option {
	return func(o *options) { o.realtime = false }
}

// WithHostRoot reads /proc and /sys below root instead of /.
func WithHostRoot(root string) Option {
	return func(o *options) { o.host = realtime.Host{Root: root} }
}
