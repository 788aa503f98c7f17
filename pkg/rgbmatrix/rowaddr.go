package rgbmatrix

import (
	"github.com/fkcurrie/hub75-golang/pkg/gpio"
	"github.com/fkcurrie/hub75-golang/pkg/hwmap"
)

// rowAddresser selects the scan row that is lit by the next pulse.
type rowAddresser interface {
	// UsedBits returns the pins the addresser drives.
	UsedBits() uint32
	SetRowAddress(bus *gpio.Bus, row int)
}

func newRowAddresser(kind RowSetter, m *hwmap.Mapping, doubleRows int) rowAddresser {
	switch kind {
	case RowShiftRegister:
		return &shiftRegisterRows{clock: m.A, data: m.B, doubleRows: doubleRows, last: -1}
	case RowABCShiftRegister:
		return &shiftRegisterRows{clock: m.A, data: m.C, doubleRows: doubleRows, last: -1}
	case RowDirectABCDLine:
		return &abcdLineRows{
			lines: [4]uint32{
				m.B | m.C | m.D,
				m.A | m.C | m.D,
				m.A | m.B | m.D,
				m.A | m.B | m.C,
			},
			mask: m.A | m.B | m.C | m.D,
			last: -1,
		}
	case RowSM5266:
		return newSM5266Rows(m, doubleRows)
	}
	return newDirectRows(m, doubleRows)
}

// addressLines returns the binary row address of row on A-E.
func addressLines(m *hwmap.Mapping, row int) uint32 {
	var bits uint32
	for i, line := range []uint32{m.A, m.B, m.C, m.D, m.E} {
		if row&(1<<uint(i)) != 0 {
			bits |= line
		}
	}
	return bits
}

type directRows struct {
	mask   uint32
	lookup [maxDoubleRows]uint32
	last   int
}

func newDirectRows(m *hwmap.Mapping, doubleRows int) *directRows {
	r := &directRows{mask: m.A, last: -1}
	if doubleRows > 2 {
		r.mask |= m.B
	}
	if doubleRows > 4 {
		r.mask |= m.C
	}
	if doubleRows > 8 {
		r.mask |= m.D
	}
	if doubleRows > 16 {
		r.mask |= m.E
	}
	for i := 0; i < doubleRows && i < maxDoubleRows; i++ {
		r.lookup[i] = addressLines(m, i)
	}
	return r
}

func (r *directRows) UsedBits() uint32 { return r.mask }

func (r *directRows) SetRowAddress(bus *gpio.Bus, row int) {
	if row == r.last {
		return
	}
	bus.WriteMaskedBits(r.lookup[row], r.mask)
	r.last = row
}

// shiftRegisterRows clocks a single low bit through a chain of row drivers.
type shiftRegisterRows struct {
	clock, data uint32
	doubleRows  int
	last        int
}

func (r *shiftRegisterRows) UsedBits() uint32 { return r.clock | r.data }

func (r *shiftRegisterRows) SetRowAddress(bus *gpio.Bus, row int) {
	if row == r.last {
		return
	}
	for activate := 0; activate < r.doubleRows; activate++ {
		bus.ClearBits(r.clock)
		if activate == r.doubleRows-1-row {
			bus.ClearBits(r.data)
		} else {
			bus.SetBits(r.data)
		}
		bus.SetBits(r.clock)
	}
	bus.ClearBits(r.clock)
	bus.SetBits(r.clock)
	r.last = row
}

// abcdLineRows pulls one address line low per row, repeating every four.
type abcdLineRows struct {
	lines [4]uint32
	mask  uint32
	last  int
}

func (r *abcdLineRows) UsedBits() uint32 { return r.mask }

func (r *abcdLineRows) SetRowAddress(bus *gpio.Bus, row int) {
	if row == r.last {
		return
	}
	bus.WriteMaskedBits(r.lines[row%4], r.mask)
	r.last = row
}

// sm5266Rows shifts the row within a group of eight into the SM5266 and
// drives the group on D and E.
type sm5266Rows struct {
	bk, din, dck uint32
	mask         uint32
	lookup       [maxDoubleRows]uint32
	last         int
}

func newSM5266Rows(m *hwmap.Mapping, doubleRows int) *sm5266Rows {
	r := &sm5266Rows{
		bk:   m.C,
		din:  m.B,
		dck:  m.A,
		mask: m.A | m.B | m.C,
		last: -1,
	}
	if doubleRows > 8 {
		r.mask |= m.D
	}
	if doubleRows > 16 {
		r.mask |= m.E
	}
	for i := 0; i < doubleRows && i < maxDoubleRows; i++ {
		if i&8 != 0 {
			r.lookup[i] |= m.D
		}
		if i&16 != 0 {
			r.lookup[i] |= m.E
		}
	}
	return r
}

func (r *sm5266Rows) UsedBits() uint32 { return r.mask }

func (r *sm5266Rows) SetRowAddress(bus *gpio.Bus, row int) {
	if row == r.last {
		return
	}
	bus.SetBits(r.bk)
	for bit := 7; bit >= 0; bit-- {
		if row%8 == bit {
			bus.SetBits(r.din)
		} else {
			bus.ClearBits(r.din)
		}
		// Held for two writes.
		bus.SetBits(r.dck)
		bus.SetBits(r.dck)
		bus.ClearBits(r.dck)
	}
	bus.ClearBits(r.bk)
	r.last = row
	bus.WriteMaskedBits(r.lookup[row], r.mask)
}
