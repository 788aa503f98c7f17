package pixelmap

import (
	"github.com/pkg/errors"
)

// Pipeline is an ordered list of mappers. The first stage is applied to the
// physical matrix, each following stage to the output of the one before it.
type Pipeline []Mapper

// Size returns the logical dimensions the pipeline presents for a physical
// matrix of w by h pixels.
func (p Pipeline) Size(w, h int) (int, int, error) {
	for i, m := range p {
		var err error
		if w, h, err = m.Size(w, h); err != nil {
			return 0, 0, errors.Wrapf(err, "stage %d", i)
		}
	}
	return w, h, nil
}

// Map runs a logical coordinate back through every stage to the physical
// matrix of w by h pixels.
func (p Pipeline) Map(w, h, x, y int) (int, int, error) {
	dims := make([][2]int, len(p)+1)
	dims[0] = [2]int{w, h}
	for i, m := range p {
		var err error
		if w, h, err = m.Size(w, h); err != nil {
			return 0, 0, errors.Wrapf(err, "stage %d", i)
		}
		dims[i+1] = [2]int{w, h}
	}
	return p.mapThrough(dims, x, y)
}

func (p Pipeline) mapThrough(dims [][2]int, x, y int) (int, int, error) {
	for i := len(p) - 1; i >= 0; i-- {
		var err error
		if x, y, err = p[i].Map(dims[i][0], dims[i][1], x, y); err != nil {
			return 0, 0, errors.Wrapf(err, "stage %d", i)
		}
	}
	return x, y, nil
}

// Resolve builds the lookup table for a physical matrix of w by h pixels.
// It fails if any stage rejects the dimensions or any logical pixel lands
// outside the matrix.
func (p Pipeline) Resolve(w, h int) (*Table, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.Wrapf(ErrInvalidMapper, "empty matrix %dx%d", w, h)
	}
	dims := make([][2]int, len(p)+1)
	dims[0] = [2]int{w, h}
	lw, lh := w, h
	for i, m := range p {
		var err error
		if lw, lh, err = m.Size(lw, lh); err != nil {
			return nil, errors.Wrapf(err, "stage %d", i)
		}
		dims[i+1] = [2]int{lw, lh}
	}

	t := &Table{
		width:      lw,
		height:     lh,
		physWidth:  w,
		physHeight: h,
		forward:    make([]int32, lw*lh),
		inverse:    make([]int32, w*h),
	}
	for i := range t.inverse {
		t.inverse[i] = -1
	}
	for y := 0; y < lh; y++ {
		for x := 0; x < lw; x++ {
			px, py, err := p.mapThrough(dims, x, y)
			if err != nil {
				return nil, err
			}
			phys := int32(py*w + px)
			t.forward[y*lw+x] = phys
			t.inverse[phys] = int32(y*lw + x)
		}
	}
	return t, nil
}

// Table is a resolved pipeline: a lookup in both directions between logical
// and physical pixels.
type Table struct {
	width, height         int
	physWidth, physHeight int
	forward               []int32
	inverse               []int32
}

// Width returns the logical width.
func (t *Table) Width() int { return t.width }

// Height returns the logical height.
func (t *Table) Height() int { return t.height }

// PhysicalWidth returns the width of the matrix the table maps onto.
func (t *Table) PhysicalWidth() int { return t.physWidth }

// PhysicalHeight returns the height of the matrix the table maps onto.
func (t *Table) PhysicalHeight() int { return t.physHeight }

// Map returns the physical pixel of logical pixel (x, y).
func (t *Table) Map(x, y int) (px, py int, err error) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return 0, 0, errors.Wrapf(ErrOutOfRange, "(%d,%d) outside %dx%d", x, y, t.width, t.height)
	}
	phys := int(t.forward[y*t.width+x])
	return phys % t.physWidth, phys / t.physWidth, nil
}

// Inverse returns the logical pixel shown at physical pixel (px, py).
func (t *Table) Inverse(px, py int) (x, y int, err error) {
	if px < 0 || py < 0 || px >= t.physWidth || py >= t.physHeight {
		return 0, 0, errors.Wrapf(ErrOutOfRange, "physical (%d,%d) outside %dx%d", px, py, t.physWidth, t.physHeight)
	}
	logical := t.inverse[py*t.physWidth+px]
	if logical < 0 {
		return 0, 0, errors.Wrapf(ErrNotMapped, "physical (%d,%d)", px, py)
	}
	return int(logical) % t.width, int(logical) / t.width, nil
}

// Physical returns the physical pixel index py*PhysicalWidth+px of every
// logical pixel, in row-major logical order. The slice must not be modified.
func (t *Table) Physical() []int32 {
	return t.forward
}
