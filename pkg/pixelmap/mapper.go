// Package pixelmap translates logical canvas coordinates to physical matrix
// coordinates.
//
// A Mapper is one transformation stage. Each stage is applied to an input
// rectangle (the physical side) and reports the output rectangle it presents
// (the logical side); Map takes a logical coordinate and returns where it
// lands in the input rectangle. Stages are composed into a Pipeline, which is
// resolved once into a lookup Table.
package pixelmap

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind selects the transformation a Mapper performs.
type Kind int

const (
	KindIdentity Kind = iota
	KindRotate
	KindMirror
	KindUArrange
	KindChainLink
	KindMultiplex
)

func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "Identity"
	case KindRotate:
		return "Rotate"
	case KindMirror:
		return "Mirror"
	case KindUArrange:
		return "U-mapper"
	case KindChainLink:
		return "ChainLink"
	case KindMultiplex:
		return "Multiplex"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Mapper is a single transformation stage. Only the fields of its Kind are
// used.
type Mapper struct {
	Kind Kind

	// Angle in degrees for KindRotate; a multiple of 90.
	Angle int
	// Horizontal selects the mirrored axis for KindMirror.
	Horizontal bool
	// Chain and Parallel describe the panel arrangement for KindUArrange.
	Chain, Parallel int
	// Chains is the number of chains joined by KindChainLink.
	Chains int
	// Scheme, PanelRows and PanelCols describe a KindMultiplex panel. Rows
	// and columns are the panel's visible dimensions.
	Scheme               Scheme
	PanelRows, PanelCols int
}

// Identity maps every coordinate to itself.
func Identity() Mapper {
	return Mapper{Kind: KindIdentity}
}

// Rotate turns the canvas clockwise by angle degrees.
func Rotate(angle int) Mapper {
	return Mapper{Kind: KindRotate, Angle: angle}
}

// Mirror reflects the canvas, horizontally (x) or vertically (y).
func Mirror(horizontal bool) Mapper {
	return Mapper{Kind: KindMirror, Horizontal: horizontal}
}

// UArrange folds a chain of panels into a U: the second half of the chain
// runs back underneath the first half, upside down.
func UArrange(chain, parallel int) Mapper {
	return Mapper{Kind: KindUArrange, Chain: chain, Parallel: parallel}
}

// ChainLink places the parallel chains side by side so they form one wide
// canvas.
func ChainLink(chains int) Mapper {
	return Mapper{Kind: KindChainLink, Chains: chains}
}

// Multiplex remaps a panel whose scan lines are wired in a non standard
// pattern.
func Multiplex(scheme Scheme, panelRows, panelCols int) Mapper {
	return Mapper{Kind: KindMultiplex, Scheme: scheme, PanelRows: panelRows, PanelCols: panelCols}
}

func (m Mapper) String() string {
	switch m.Kind {
	case KindRotate:
		return fmt.Sprintf("Rotate:%d", m.Angle)
	case KindMirror:
		if m.Horizontal {
			return "Mirror:H"
		}
		return "Mirror:V"
	case KindUArrange:
		return fmt.Sprintf("U-mapper(chain=%d,parallel=%d)", m.Chain, m.Parallel)
	case KindChainLink:
		return fmt.Sprintf("ChainLink:%d", m.Chains)
	case KindMultiplex:
		return fmt.Sprintf("Multiplex:%s(%dx%d)", m.Scheme, m.PanelCols, m.PanelRows)
	}
	return m.Kind.String()
}

func normalizeAngle(angle int) int {
	return (angle%360 + 360) % 360
}

func (m Mapper) invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidMapper, "%s: "+format, append([]interface{}{m}, args...)...)
}

// Size returns the output dimensions of the mapper applied to an input of
// inW by inH pixels.
func (m Mapper) Size(inW, inH int) (w, h int, err error) {
	if inW <= 0 || inH <= 0 {
		return 0, 0, m.invalid("empty input %dx%d", inW, inH)
	}
	switch m.Kind {
	case KindIdentity, KindMirror:
		return inW, inH, nil

	case KindRotate:
		angle := normalizeAngle(m.Angle)
		if angle%90 != 0 {
			return 0, 0, m.invalid("angle must be a multiple of 90")
		}
		if angle%180 == 0 {
			return inW, inH, nil
		}
		return inH, inW, nil

	case KindUArrange:
		if m.Chain < 2 || m.Chain%2 != 0 {
			return 0, 0, m.invalid("needs an even chain length")
		}
		if m.Parallel < 1 || inH%m.Parallel != 0 {
			return 0, 0, m.invalid("height %d not divisible by %d parallel chains", inH, m.Parallel)
		}
		if inW%m.Chain != 0 {
			return 0, 0, m.invalid("width %d not divisible by chain length %d", inW, m.Chain)
		}
		return inW / 2, inH * 2, nil

	case KindChainLink:
		if m.Chains < 1 {
			return 0, 0, m.invalid("needs at least one chain")
		}
		if inH%m.Chains != 0 {
			return 0, 0, m.invalid("height %d not divisible by %d chains", inH, m.Chains)
		}
		return inW * m.Chains, inH / m.Chains, nil

	case KindMultiplex:
		stretch := m.Scheme.Stretch()
		if stretch == 0 {
			return 0, 0, m.invalid("unknown scheme")
		}
		if m.PanelRows <= 0 || m.PanelCols <= 0 || m.PanelRows%stretch != 0 {
			return 0, 0, m.invalid("panel %dx%d does not fit stretch %d", m.PanelCols, m.PanelRows, stretch)
		}
		if inW%(m.PanelCols*stretch) != 0 || inH%(m.PanelRows/stretch) != 0 {
			return 0, 0, m.invalid("matrix %dx%d is not made of whole panels", inW, inH)
		}
		return inW / stretch, inH * stretch, nil
	}
	return 0, 0, m.invalid("unknown kind")
}

// Map returns the input coordinate the output coordinate (x, y) is taken
// from. Coordinates outside the output rectangle fail with ErrOutOfRange.
func (m Mapper) Map(inW, inH, x, y int) (px, py int, err error) {
	w, h, err := m.Size(inW, inH)
	if err != nil {
		return 0, 0, err
	}
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, 0, errors.Wrapf(ErrOutOfRange, "%s: (%d,%d) outside %dx%d", m, x, y, w, h)
	}

	switch m.Kind {
	case KindIdentity:
		px, py = x, y

	case KindRotate:
		switch normalizeAngle(m.Angle) {
		case 0:
			px, py = x, y
		case 90:
			px, py = inW-1-y, x
		case 180:
			px, py = inW-1-x, inH-1-y
		case 270:
			px, py = y, inH-1-x
		}

	case KindMirror:
		if m.Horizontal {
			px, py = inW-1-x, y
		} else {
			px, py = x, inH-1-y
		}

	case KindUArrange:
		panelH := inH / m.Parallel
		slabH := 2 * panelH
		baseY := (y / slabH) * panelH
		y %= slabH
		if y < panelH {
			px, py = x+inW/2, baseY+y
		} else {
			px, py = w-1-x, baseY+slabH-1-y
		}

	case KindChainLink:
		chainH := inH / m.Chains
		px, py = x%inW, (x/inW)*chainH+y

	case KindMultiplex:
		px, py = m.Scheme.mapVisible(m.PanelRows, m.PanelCols, x, y)
	}

	if px < 0 || py < 0 || px >= inW || py >= inH {
		return 0, 0, m.invalid("(%d,%d) lands on (%d,%d) outside %dx%d", x, y, px, py, inW, inH)
	}
	return px, py, nil
}
