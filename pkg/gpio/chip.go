package gpio

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Chip identifies a Broadcom SoC generation.
type Chip int

const (
	ChipUnknown Chip = iota
	// BCM2708 is the Pi 1 and Zero SoC.
	BCM2708
	// BCM2709 is the Pi 2 and 3 SoC.
	BCM2709
	// BCM2711 is the Pi 4 SoC.
	BCM2711
)

// ParseChip resolves a chip name. BCM2835, BCM2836 and BCM2837 are accepted
// as aliases.
func ParseChip(name string) (Chip, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "BCM2708", "BCM2835":
		return BCM2708, nil
	case "BCM2709", "BCM2836", "BCM2837":
		return BCM2709, nil
	case "BCM2711":
		return BCM2711, nil
	}
	return ChipUnknown, errors.Wrapf(ErrUnknownChip, "%q", name)
}

func (c Chip) String() string {
	switch c {
	case BCM2708:
		return "BCM2708"
	case BCM2709:
		return "BCM2709"
	case BCM2711:
		return "BCM2711"
	}
	return "unknown"
}

// PeripheralBase returns the physical address all peripheral offsets are relative to.
func (c Chip) PeripheralBase() uintptr {
	switch c {
	case BCM2708:
		return 0x20000000
	case BCM2709:
		return 0x3F000000
	case BCM2711:
		return 0xFE000000
	}
	return 0
}

// DefaultSlowdown returns the slowdown that works with most panels on this chip.
func (c Chip) DefaultSlowdown() int {
	if c == BCM2711 {
		return 2
	}
	return 1
}

// Cores returns the number of CPU cores.
func (c Chip) Cores() int {
	if c == BCM2708 {
		return 1
	}
	return 4
}

// DetectChip reads /proc/cpuinfo content and derives the chip from the board
// revision code.
func DetectChip(r io.Reader) (Chip, error) {
	var revision string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Revision") {
			continue
		}
		fields := strings.Fields(line)
		revision = fields[len(fields)-1]
		break
	}
	if err := scanner.Err(); err != nil {
		return ChipUnknown, errors.Wrap(err, "failed to read cpuinfo")
	}
	if revision == "" {
		return ChipUnknown, errors.Wrap(ErrUnknownChip, "no revision in cpuinfo")
	}

	// Old style revision codes are only used by the Pi 1.
	if len(revision) == 4 {
		return BCM2708, nil
	}

	code, err := strconv.ParseUint(revision, 16, 32)
	if err != nil {
		return ChipUnknown, errors.Wrapf(ErrUnknownChip, "revision %q", revision)
	}
	// Bits: NOQuuuWuFMMMCCCCPPPPTTTTTTTTRRRR, PPPP is the processor.
	switch (code >> 12) & 0xF {
	case 0:
		return BCM2708, nil
	case 1, 2:
		return BCM2709, nil
	case 3:
		return BCM2711, nil
	}
	return ChipUnknown, errors.Wrapf(ErrUnknownChip, "revision %q", revision)
}
