package pixelmap

import (
	"strings"

	"github.com/pkg/errors"
)

// Scheme is a panel scan pattern. Outdoor and high density panels often
// drive fewer scan lines than a standard HUB75 panel of the same size and
// spread each logical row over a longer physical shift register.
type Scheme int

const (
	SchemeNone Scheme = iota
	Stripe
	Checkered
	Spiral
	ZStripe08
	ZStripe44
	ZStripe80
	Coreman
	Kaler2Scan
	P10Z
	QiangLiQ8
	InversedZStripe
	P10Outdoor1R1G1B1
	P10Outdoor1R1G1B2
	P10Outdoor1R1G1B3
	P10Coreman
	P8Outdoor1R1G1B
	FlippedStripe
	P10Outdoor32x16HalfScan
)

var schemeNames = [...]string{
	SchemeNone:              "None",
	Stripe:                  "Stripe",
	Checkered:               "Checkered",
	Spiral:                  "Spiral",
	ZStripe08:               "ZStripe08",
	ZStripe44:               "ZStripe44",
	ZStripe80:               "ZStripe80",
	Coreman:                 "Coreman",
	Kaler2Scan:              "Kaler2Scan",
	P10Z:                    "P10Z",
	QiangLiQ8:               "QiangLiQ8",
	InversedZStripe:         "InversedZStripe",
	P10Outdoor1R1G1B1:       "P10Outdoor1R1G1B1",
	P10Outdoor1R1G1B2:       "P10Outdoor1R1G1B2",
	P10Outdoor1R1G1B3:       "P10Outdoor1R1G1B3",
	P10Coreman:              "P10Coreman",
	P8Outdoor1R1G1B:         "P8Outdoor1R1G1B",
	FlippedStripe:           "FlippedStripe",
	P10Outdoor32x16HalfScan: "P10Outdoor32x16HalfScan",
}

func (s Scheme) String() string {
	if s < 0 || int(s) >= len(schemeNames) {
		return "Unknown"
	}
	return schemeNames[s]
}

// Schemes lists all scan patterns except SchemeNone.
func Schemes() []Scheme {
	schemes := make([]Scheme, 0, len(schemeNames)-1)
	for s := Stripe; int(s) < len(schemeNames); s++ {
		schemes = append(schemes, s)
	}
	return schemes
}

// ParseScheme resolves a scheme name case insensitively. The empty string and
// "none" are SchemeNone.
func ParseScheme(name string) (Scheme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SchemeNone, nil
	}
	for s, n := range schemeNames {
		if strings.EqualFold(n, name) {
			return Scheme(s), nil
		}
	}
	return SchemeNone, errors.Wrapf(ErrInvalidMapper, "unknown multiplexing scheme %q", name)
}

// Stretch is the factor by which the scheme divides the scan rows and
// multiplies the shifted columns. It is 1 for SchemeNone and 0 for unknown
// schemes.
func (s Scheme) Stretch() int {
	switch s {
	case SchemeNone:
		return 1
	case Kaler2Scan, P10Z, P10Coreman, P10Outdoor32x16HalfScan:
		return 4
	}
	if s > SchemeNone && int(s) < len(schemeNames) {
		return 2
	}
	return 0
}

// Physical returns the per-panel rows and columns the driver chips see for a
// panel with the given visible dimensions.
func (s Scheme) Physical(rows, cols int) (physRows, physCols int) {
	stretch := s.Stretch()
	if stretch == 0 {
		return rows, cols
	}
	return rows / stretch, cols * stretch
}

// mapVisible locates a visible pixel of a chain of panels on the physical
// matrix.
func (s Scheme) mapVisible(panelRows, panelCols, x, y int) (int, int) {
	stretch := s.Stretch()
	chained := x / panelCols
	parallel := y / panelRows
	nx, ny := s.mapPanel(panelRows, panelCols, x%panelCols, y%panelRows)
	return chained*stretch*panelCols + nx, parallel*panelRows/stretch + ny
}

func (s Scheme) mapPanel(rows, cols, x, y int) (mx, my int) {
	switch s {
	case SchemeNone:
		return x, y

	case Stripe, FlippedStripe:
		top := y%(rows/2) < rows/4
		if s == FlippedStripe {
			top = !top
		}
		mx = x
		if top {
			mx += cols
		}
		return mx, (y/(rows/2))*(rows/4) + y%(rows/4)

	case Checkered:
		top := y%(rows/2) < rows/4
		left := x < cols/2
		switch {
		case top && left:
			mx = x + cols/2
		case top:
			mx = x + cols
		case left:
			mx = x
		default:
			mx = x + cols/2
		}
		return mx, (y/(rows/2))*(rows/4) + y%(rows/4)

	case Spiral:
		top := y%(rows/2) < rows/4
		quarterWidth := cols / 4
		quarter := x / quarterWidth
		offset := x % quarterWidth
		mx = 2 * quarter * quarterWidth
		if top {
			mx += quarterWidth - 1 - offset
		} else {
			mx += quarterWidth + offset
		}
		return mx, (y/(rows/2))*(rows/4) + y%(rows/4)

	case ZStripe08, ZStripe44, ZStripe80:
		evenOffset, oddOffset := 0, 8
		switch s {
		case ZStripe44:
			evenOffset, oddOffset = 4, 4
		case ZStripe80:
			evenOffset, oddOffset = 8, 0
		}
		return zStripe(x, y, evenOffset, oddOffset)

	case Coreman:
		if y <= 7 || (y >= 16 && y <= 23) {
			mx = (x/(cols/2))*cols + x%(cols/2)
			if y&(rows/4) == 0 {
				my = (y/(rows/2))*(rows/4) + y%(rows/4)
			}
			return mx, my
		}
		if x < cols/2 {
			mx = x + cols/2
		} else {
			mx = x + cols
		}
		return mx, (y/(rows/2))*(rows/4) + y%(rows/4)

	case Kaler2Scan:
		offset, deltaOffset := -1, 7
		if (y%4)/2 != 0 {
			offset, deltaOffset = 1, 8
		}
		deltaColumn := 0
		if (y%8)/4 == 0 {
			deltaColumn = 64
		}
		return deltaColumn + 16*(x/8) + deltaOffset + (x%8)*offset, y%2 + (y/8)*2

	case P10Z:
		return p10Z(x, y)

	case QiangLiQ8:
		if (y >= 15 && y <= 19) || (y >= 5 && y <= 9) {
			mx = x + 4*(x/4)
		} else {
			mx = x + 4 + 4*(x/4)
		}
		return mx, y%5 + (y/10)*5

	case InversedZStripe:
		const tileWidth, tileHeight = 8, 4
		evenOffset := [8]int{15, 13, 11, 9, 7, 5, 3, 1}
		mx = x + (x/tileWidth)*tileWidth
		if (y/tileHeight)%2 == 0 {
			mx += evenOffset[x%8]
		}
		return mx, y%tileHeight + tileHeight*(y/(tileHeight*2))

	case P10Outdoor1R1G1B1, P10Outdoor1R1G1B2, P10Outdoor1R1G1B3:
		return p10Outdoor(s, x, y)

	case P10Coreman:
		// Row offsets 9,9,8,8,1,1,0,0 repeating.
		mulY := 8
		if y&4 != 0 {
			mulY = 0
		}
		if y&2 == 0 {
			mulY++
		}
		mulY += (x >> 2) &^ 1
		return mulY<<3 + x%8, y&1 + (y>>2)&^1

	case P8Outdoor1R1G1B:
		const tileWidth, tileHeight = 8, 5
		base := tileWidth * (1 + tileWidth - 2*(x/tileWidth))
		if (y/tileHeight)%2 == 0 {
			mx = base + tileWidth - x%tileWidth - 1
		} else {
			mx = base - tileWidth + x%tileWidth
		}
		return mx, tileHeight - y%tileHeight + tileHeight*(1-y/(tileHeight*2)) - 1

	case P10Outdoor32x16HalfScan:
		base := (x / 8) * 32
		offset := (3 - (y%8)/2) * 8
		dx := x % 8
		if (y%4)/2 == 0 {
			mx = base + offset + 7 - dx
		} else {
			mx = base + offset + dx
		}
		my = y % 2
		if y/8 != 0 {
			my += 2
		}
		return mx, my
	}
	return -1, -1
}

func zStripe(x, y, evenOffset, oddOffset int) (int, int) {
	const tileWidth, tileHeight = 8, 4
	odd := (y / tileHeight) % 2
	evenShift := (1 - odd) * evenOffset
	oddShift := odd * oddOffset
	mx := x + ((x+evenShift)/tileWidth)*tileWidth + oddShift
	my := y%tileHeight + tileHeight*(y/(tileHeight*2))
	return mx, my
}

func p10Z(x, y int) (int, int) {
	var comp int
	switch y % 8 {
	case 0, 1:
		comp = 127
	case 2, 3:
		comp = 112
	case 4, 5:
		comp = 111
	case 6, 7:
		comp = 96
	}
	var mx int
	if (y/2)%2 == 0 {
		mx = comp - x - 24*(x/8)
	} else {
		mx = comp + x - 40*(x/8)
	}
	my := 3 - y%2
	if y >= 8 {
		my -= 2
	}
	return mx, my
}

func p10Outdoor(s Scheme, x, y int) (int, int) {
	const tileWidth, tileHeight = 8, 4
	even := (y/tileHeight)%2 == 0
	var mx int
	switch {
	case s == P10Outdoor1R1G1B1 && even:
		mx = tileWidth*(2+2*(x/tileWidth)) - x%tileWidth - 1
	case s == P10Outdoor1R1G1B1:
		mx = tileWidth*(1+2*(x/tileWidth)) - x%tileWidth - 1
	case s == P10Outdoor1R1G1B2 && even:
		mx = tileWidth*(1+2*(x/tileWidth)) - x%tileWidth - 1
	case s == P10Outdoor1R1G1B2:
		mx = x + (x/tileWidth)*tileWidth + tileWidth
	case s == P10Outdoor1R1G1B3 && even:
		mx = x + (x/tileWidth)*tileWidth
	default:
		mx = tileWidth*(2+2*(x/tileWidth)) - x%tileWidth - 1
	}
	return mx, y%tileHeight + tileHeight*(y/(tileHeight*2))
}
