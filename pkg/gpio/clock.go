package gpio

import (
	"time"
)

const (
	// Sleeps shorter than this are spun out entirely.
	minSysSleep = 100 * time.Microsecond
	// Share of a sleep handed to the scheduler before spinning.
	sysSleepFactor = 0.4
)

// Clock is a monotonic microsecond time source with precise sleeps.
type Clock interface {
	// Now returns the time since an arbitrary fixed epoch.
	Now() time.Duration
	// Sleep blocks for d, spinning for the final stretch.
	Sleep(d time.Duration)
}

var epoch = time.Now()

// SystemClock uses the Go runtime's monotonic clock.
type SystemClock struct{}

// Now returns the time since process start.
func (SystemClock) Now() time.Duration {
	return time.Since(epoch)
}

// Sleep blocks for d.
func (c SystemClock) Sleep(d time.Duration) {
	preciseSleep(c, d)
}

// SleepAtMost hands as much of d to the scheduler as is safe without
// overshooting.
func SleepAtMost(d time.Duration) {
	if d > minSysSleep {
		time.Sleep(time.Duration(float64(d) * sysSleepFactor))
	}
}

func preciseSleep(c Clock, d time.Duration) {
	if d <= 0 {
		return
	}
	end := c.Now() + d
	SleepAtMost(d)
	for c.Now() < end {
	}
}
