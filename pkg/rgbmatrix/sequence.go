package rgbmatrix

import (
	"strings"

	"github.com/pkg/errors"
)

// LEDSequence is the order in which a panel wires its colour inputs. A GBR
// panel shows on its R1 input what should be green.
type LEDSequence int

const (
	RGB LEDSequence = iota
	RBG
	GRB
	GBR
	BRG
	BGR
)

var sequenceNames = [...]string{
	RGB: "RGB",
	RBG: "RBG",
	GRB: "GRB",
	GBR: "GBR",
	BRG: "BRG",
	BGR: "BGR",
}

func (s LEDSequence) String() string {
	if s < 0 || int(s) >= len(sequenceNames) {
		return "Unknown"
	}
	return sequenceNames[s]
}

// ParseLEDSequence resolves a sequence name case insensitively. The empty
// string is RGB.
func ParseLEDSequence(name string) (LEDSequence, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return RGB, nil
	}
	for s, n := range sequenceNames {
		if n == name {
			return LEDSequence(s), nil
		}
	}
	return RGB, errors.Wrapf(ErrInvalidConfig, "unknown led sequence %q", name)
}

// permute returns the pins that carry the red, green and blue channels when
// r, g and b are the panel's R, G and B inputs.
func (s LEDSequence) permute(r, g, b uint32) (red, green, blue uint32) {
	switch s {
	case RBG:
		return r, b, g
	case GRB:
		return g, r, b
	case GBR:
		return g, b, r
	case BRG:
		return b, r, g
	case BGR:
		return b, g, r
	}
	return r, g, b
}
