package rgbmatrix

import (
	"sync"
	"time"
)

const fpsWindow = 60

// frameRate averages the time between swaps over the last fpsWindow frames.
type frameRate struct {
	mu    sync.Mutex
	times [fpsWindow]time.Duration
	index int
	last  time.Time
	now   func() time.Time
}

func newFrameRate() *frameRate {
	f := &frameRate{now: time.Now}
	for i := range f.times {
		f.times[i] = time.Second / fpsWindow
	}
	return f
}

func (f *frameRate) update() {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	if !f.last.IsZero() {
		f.times[f.index] = now.Sub(f.last)
		f.index = (f.index + 1) % fpsWindow
	}
	f.last = now
}

func (f *frameRate) fps() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum time.Duration
	for _, t := range f.times {
		sum += t
	}
	if sum <= 0 {
		return 0
	}
	return fpsWindow / sum.Seconds()
}
