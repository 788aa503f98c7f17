// Package realtime prepares the host for the render loop: it checks for
// kernel modules that hold the pins or peripherals, pins the render thread to
// a core and raises its priority.
package realtime

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	modulesPath   = "/proc/modules"
	isolatedPath  = "/sys/devices/system/cpu/isolated"
	rtRuntimePath = "/proc/sys/kernel/sched_rt_runtime_us"
	governorPath  = "/sys/devices/system/cpu/cpu%d/cpufreq/scaling_governor"

	// Leaves 1ms per second to non realtime tasks.
	rtRuntime = "999000"
)

// Host gives access to the procfs and sysfs files of a machine. The zero
// value is the running host.
type Host struct {
	// Root is prepended to every path.
	Root string
}

func (h Host) path(p string) string {
	if h.Root == "" {
		return p
	}
	return filepath.Join(h.Root, p)
}

// ModuleLoaded reports whether the kernel module name is loaded. A missing
// module list counts as not loaded.
func (h Host) ModuleLoaded(name string) bool {
	f, err := os.Open(h.path(modulesPath))
	if err != nil {
		return false
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 && fields[0] == name {
			return true
		}
	}
	return false
}

// CPUIsolated reports whether cpu is excluded from the scheduler with
// isolcpus.
func (h Host) CPUIsolated(cpu int) bool {
	data, err := os.ReadFile(h.path(isolatedPath))
	if err != nil {
		return false
	}
	cpus, err := ParseCPUList(strings.TrimSpace(string(data)))
	if err != nil {
		return false
	}
	for _, c := range cpus {
		if c == cpu {
			return true
		}
	}
	return false
}

// ParseCPUList parses the kernel cpu list format, e.g. "1,3-5".
func ParseCPUList(s string) ([]int, error) {
	var cpus []int
	if s == "" {
		return cpus, nil
	}
	for _, part := range strings.Split(s, ",") {
		lo, hi, isRange := strings.Cut(strings.TrimSpace(part), "-")
		first, err := strconv.Atoi(lo)
		if err != nil {
			return nil, errors.Wrapf(err, "cpu list %q", s)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(hi); err != nil {
				return nil, errors.Wrapf(err, "cpu list %q", s)
			}
		}
		if last < first {
			return nil, errors.Errorf("cpu list %q: descending range", s)
		}
		for c := first; c <= last; c++ {
			cpus = append(cpus, c)
		}
	}
	return cpus, nil
}

// Advise warns when the render core is shared with other tasks.
func (h Host) Advise(log zerolog.Logger, core int) {
	if core > 0 && !h.CPUIsolated(core) {
		log.Warn().Int("core", core).
			Msgf("render core is not isolated, expect flicker; add isolcpus=%d to the kernel command line", core)
	}
}

// Setup prepares the calling OS thread to run the render loop on core out
// of cores. Every step is best effort and only logged on failure. The caller
// must have locked the goroutine to its thread.
func (h Host) Setup(log zerolog.Logger, core, cores int) {
	if err := PinToCore(core); err != nil {
		log.Warn().Err(err).Msg("could not pin render thread")
	}
	if cores > 1 {
		if err := write(h.path(rtRuntimePath), rtRuntime); err != nil {
			log.Warn().Err(err).Msg("could not disable realtime throttling")
		}
		if err := write(h.path(fmt.Sprintf(governorPath, core)), "performance"); err != nil {
			log.Warn().Err(err).Int("core", core).Msg("could not set performance governor")
		}
	}
	if err := RaisePriority(); err != nil {
		log.Warn().Err(err).Msg("could not raise render thread priority")
	}
}

func write(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(value)
	return err
}
