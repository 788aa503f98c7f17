package rgbmatrix

import (
	"github.com/fkcurrie/hub75-golang/pkg/hwmap"
	"github.com/fkcurrie/hub75-golang/pkg/pixelmap"
)

// geometry is the physical layout of the matrix as the driver chips see it.
type geometry struct {
	// Rows and columns of one panel after multiplexing.
	panelRows, panelCols int
	// Scan rows; every scan row lights one row in each panel half.
	doubleRows int
	// Size of the whole physical matrix.
	width, height int
}

func newGeometry(cfg *Config) geometry {
	rows, cols := cfg.Multiplexing.Physical(cfg.Rows, cfg.Cols)
	return geometry{
		panelRows:  rows,
		panelCols:  cols,
		doubleRows: rows / subPanels,
		width:      cols * cfg.ChainLength,
		height:     rows * cfg.Parallel,
	}
}

// designator locates the bits of one pixel in a Frame.
type designator struct {
	// Index of the plane 0 word; plane k is k*width words further.
	word    int
	r, g, b uint32
	// Clears r, g and b.
	mask uint32
}

// designators resolves every logical pixel of table to its GPIO word and
// colour pins.
func designators(geo geometry, mapping *hwmap.Mapping, seq LEDSequence, table *pixelmap.Table) []designator {
	phys := table.Physical()
	ds := make([]designator, len(phys))
	for i, p := range phys {
		x, y := int(p)%geo.width, int(p)/geo.width
		panel := y / geo.panelRows
		bits := mapping.Chains[panel]

		r, g, b := bits.R1, bits.G1, bits.B1
		if y-panel*geo.panelRows >= geo.doubleRows {
			r, g, b = bits.R2, bits.G2, bits.B2
		}
		r, g, b = seq.permute(r, g, b)
		ds[i] = designator{
			word: (y%geo.doubleRows)*geo.width*BitPlanes + x,
			r:    r,
			g:    g,
			b:    b,
			mask: ^(r | g | b),
		}
	}
	return ds
}

// Frame is a matrix image encoded as GPIO words: for every scan row and
// every bit-plane, one word per column with the data pins of all chains and
// both panel halves.
type Frame struct {
	width int
	rows  int
	words []uint32
	seq   uint64
}

func newFrame(geo geometry) *Frame {
	return &Frame{
		width: geo.width,
		rows:  geo.doubleRows,
		words: make([]uint32, geo.doubleRows*geo.width*BitPlanes),
	}
}

// Rows returns the number of scan rows.
func (f *Frame) Rows() int {
	return f.rows
}

// Width returns the number of columns shifted per scan row.
func (f *Frame) Width() int {
	return f.width
}

// Plane returns the column words of bit-plane plane in scan row row. The
// slice aliases the frame.
func (f *Frame) Plane(row, plane int) []uint32 {
	start := row*f.width*BitPlanes + plane*f.width
	return f.words[start : start+f.width]
}

func (f *Frame) clear() {
	for i := range f.words {
		f.words[i] = 0
	}
}

// encoder turns pixel grids into frames. It never touches hardware.
type encoder struct {
	designators []designator
	// Lowest plane carrying data.
	minPlane int
}

func newEncoder(ds []designator, pwmBits int) *encoder {
	return &encoder{
		designators: ds,
		minPlane:    BitPlanes - pwmBits,
	}
}

func (e *encoder) encode(f *Frame, pixels []Pixel, brightness int) {
	for i, p := range pixels {
		d := &e.designators[i]
		r, g, b := lookup(brightness, p)
		w := d.word + e.minPlane*f.width
		for plane := e.minPlane; plane < BitPlanes; plane++ {
			bit := uint16(1) << uint(plane)
			var bits uint32
			if r&bit != 0 {
				bits |= d.r
			}
			if g&bit != 0 {
				bits |= d.g
			}
			if b&bit != 0 {
				bits |= d.b
			}
			f.words[w] = f.words[w]&d.mask | bits
			w += f.width
		}
	}
}
