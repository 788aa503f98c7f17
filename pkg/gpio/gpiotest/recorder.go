// Package gpiotest provides in-memory fakes for the gpio package.
package gpiotest

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fkcurrie/hub75-golang/pkg/gpio"
)

// OpKind tells set from clear operations.
type OpKind int

const (
	OpSet OpKind = iota
	OpClear
)

func (k OpKind) String() string {
	if k == OpSet {
		return "set"
	}
	return "clear"
}

// Op is one recorded register write.
type Op struct {
	Kind OpKind
	Bits uint32
}

// Recorder is a gpio.Port that keeps the pin state in memory. It is safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	record  bool
	ops     []Op
	writes  int
	levels  uint32
	outputs uint32
	inputs  uint32
	driven  uint32
	closed  bool
	watch   func(prev, next uint32)
}

var _ gpio.Port = (*Recorder)(nil)

// NewRecorder returns a recorder with all pins low.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record turns keeping a log of every write on or off.
func (r *Recorder) Record(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record = on
}

// Watch registers fn to be called with the old and new output levels on
// every write. fn runs with the recorder locked and must not call back into it.
func (r *Recorder) Watch(fn func(prev, next uint32)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watch = fn
}

func (r *Recorder) apply(kind OpKind, bits uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if r.record {
		r.ops = append(r.ops, Op{Kind: kind, Bits: bits})
	}
	prev := r.levels
	if kind == OpSet {
		r.levels |= bits
	} else {
		r.levels &^= bits
	}
	if r.watch != nil {
		r.watch(prev, r.levels)
	}
}

// SetBits drives bits high.
func (r *Recorder) SetBits(bits uint32) {
	r.apply(OpSet, bits)
}

// ClearBits drives bits low.
func (r *Recorder) ClearBits(bits uint32) {
	r.apply(OpClear, bits)
}

// Levels returns the driven output state merged with the simulated inputs.
func (r *Recorder) Levels() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levels&^r.inputs | r.driven&r.inputs
}

// SetOutputs marks bits as outputs.
func (r *Recorder) SetOutputs(bits uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs |= bits
	r.inputs &^= bits
	return nil
}

// SetInputs marks bits as inputs.
func (r *Recorder) SetInputs(bits uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs |= bits
	r.outputs &^= bits
	return nil
}

// Drive sets the externally applied level of the input pins.
func (r *Recorder) Drive(bits uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.driven = bits
}

// Close marks the recorder closed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Ops returns a copy of the recorded writes.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Reset drops the recorded writes and the write count.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	r.writes = 0
}

// Writes returns the number of register writes since the last Reset.
func (r *Recorder) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// Outputs returns the pins configured as outputs.
func (r *Recorder) Outputs() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outputs
}

// Inputs returns the pins configured as inputs.
func (r *Recorder) Inputs() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inputs
}

// Clock is a gpio.Clock that only moves when slept on or advanced.
type Clock struct {
	now int64
}

var _ gpio.Clock = (*Clock)(nil)

// Now returns the current fake time.
func (c *Clock) Now() time.Duration {
	return time.Duration(atomic.LoadInt64(&c.now))
}

// Sleep advances the clock by d.
func (c *Clock) Sleep(d time.Duration) {
	if d > 0 {
		atomic.AddInt64(&c.now, int64(d))
	}
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.Sleep(d)
}
