package rgbmatrix

import (
	"github.com/fkcurrie/hub75-golang/pkg/gpio"
	"github.com/fkcurrie/hub75-golang/pkg/hwmap"
)

// panelRegister is one configuration word shifted into every driver chip.
// The latch is held over the last latchCols columns.
type panelRegister struct {
	value     uint16
	latchCols int
}

var (
	fm6126Registers = []panelRegister{
		{0x7FFF, 12}, // full brightness
		{0x0040, 13}, // panel on
	}
	fm6127Registers = []panelRegister{
		{0xFFCE, 12},
		{0xE062, 13},
		{0x5F00, 11},
	}
)

// initPanels writes the driver chip registers of panel type t. columns is
// the number of columns shifted per row, across the whole chain.
func initPanels(t PanelType, bus *gpio.Bus, m *hwmap.Mapping, parallel, columns int) {
	var on, off uint32
	var regs []panelRegister
	switch t {
	case PanelFM6126:
		on, off = m.PanelBits(parallel)|m.A, m.A
		regs = fm6126Registers
	case PanelFM6127:
		on, off = m.Chains[0].Used()|m.A, 0
		regs = fm6127Registers
	default:
		return
	}
	mask := on | m.Strobe

	bus.ClearBits(m.Clock | m.Strobe)
	for _, reg := range regs {
		for c := 0; c < columns; c++ {
			value := off
			if reg.value&(1<<uint(c%16)) != 0 {
				value = on
			}
			if c > columns-reg.latchCols {
				value |= m.Strobe
			}
			bus.WriteMaskedBits(value, mask)
			bus.SetBits(m.Clock)
			bus.ClearBits(m.Clock)
		}
		bus.ClearBits(m.Strobe)
	}
}
