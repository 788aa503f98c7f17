package gpio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultSysfsRoot is where the legacy sysfs GPIO interface lives.
const DefaultSysfsRoot = "/sys/class/gpio"

// Time udev needs to create an exported pin's attribute files.
const sysfsExportDelay = 100 * time.Millisecond

// Sysfs is a Port using the deprecated /sys/class/gpio interface. Value files
// stay open for the lifetime of the port.
type Sysfs struct {
	root  string
	delay time.Duration

	mu       sync.Mutex
	values   [MaxPins]*os.File
	exported uint32
	err      error
}

// OpenSysfs uses the sysfs tree at root, DefaultSysfsRoot when empty.
func OpenSysfs(root string) (*Sysfs, error) {
	if root == "" {
		root = DefaultSysfsRoot
	}
	if _, err := os.Stat(filepath.Join(root, "export")); err != nil {
		return nil, errors.Wrap(err, "sysfs GPIO not available")
	}
	return &Sysfs{root: root, delay: sysfsExportDelay}, nil
}

// SetOutputs exports bits and sets their direction to low outputs.
func (s *Sysfs) SetOutputs(bits uint32) error {
	return s.setup(bits, "low", os.O_RDWR)
}

// SetInputs exports bits and sets their direction to in.
func (s *Sysfs) SetInputs(bits uint32) error {
	return s.setup(bits, "in", os.O_RDONLY)
}

func (s *Sysfs) setup(bits uint32, direction string, flag int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	forEachPin(bits, func(n int) {
		if err != nil {
			return
		}
		err = s.setupPin(n, direction, flag)
	})
	return err
}

func (s *Sysfs) setupPin(n int, direction string, flag int) error {
	dir := filepath.Join(s.root, fmt.Sprintf("gpio%d", n))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Debug().Int("pin", n).Msg("exporting GPIO pin")
		if err := writeSysfs(filepath.Join(s.root, "export"), strconv.Itoa(n)); err != nil {
			return errors.Wrapf(err, "failed to export pin %d", n)
		}
		s.exported |= 1 << uint(n)
		time.Sleep(s.delay)
	}
	if err := writeSysfs(filepath.Join(dir, "direction"), direction); err != nil {
		return errors.Wrapf(err, "failed to set pin %d direction", n)
	}
	if s.values[n] != nil {
		s.values[n].Close()
	}
	f, err := os.OpenFile(filepath.Join(dir, "value"), flag, 0)
	if err != nil {
		return errors.Wrapf(err, "failed to open pin %d value", n)
	}
	s.values[n] = f
	return nil
}

// SetBits drives bits high.
func (s *Sysfs) SetBits(bits uint32) {
	s.write(bits, "1")
}

// ClearBits drives bits low.
func (s *Sysfs) ClearBits(bits uint32) {
	s.write(bits, "0")
}

func (s *Sysfs) write(bits uint32, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	forEachPin(bits, func(n int) {
		f := s.values[n]
		if f == nil {
			return
		}
		if _, err := f.WriteAt([]byte(value), 0); err != nil && s.err == nil {
			s.err = errors.Wrapf(err, "failed to write pin %d", n)
		}
	})
}

// Levels reads the value file of every open pin.
func (s *Sysfs) Levels() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var levels uint32
	buf := make([]byte, 1)
	for n, f := range s.values {
		if f == nil {
			continue
		}
		if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
			if s.err == nil {
				s.err = errors.Wrapf(err, "failed to read pin %d", n)
			}
			continue
		}
		if buf[0] == '1' {
			levels |= 1 << uint(n)
		}
	}
	return levels
}

// Err returns the first failed read or write.
func (s *Sysfs) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the value files and unexports the pins this port exported.
func (s *Sysfs) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for n, f := range s.values {
		if f != nil {
			f.Close()
			s.values[n] = nil
		}
	}
	forEachPin(s.exported, func(n int) {
		log.Debug().Int("pin", n).Msg("unexporting GPIO pin")
		if err := writeSysfs(filepath.Join(s.root, "unexport"), strconv.Itoa(n)); err != nil {
			// The pin might already be cleaned up.
			log.Warn().Err(err).Int("pin", n).Msg("failed to unexport GPIO pin")
		}
	})
	s.exported = 0
	return nil
}

func writeSysfs(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(value)
	return err
}
