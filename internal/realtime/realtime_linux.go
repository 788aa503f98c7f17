package realtime

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// PinToCore restricts the calling thread to core.
func PinToCore(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return errors.Wrapf(unix.SchedSetaffinity(0, &set), "failed to pin thread to core %d", core)
}

// RaisePriority gives the calling thread the highest nice priority.
func RaisePriority() error {
	return errors.Wrap(unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), -20), "failed to raise priority")
}
