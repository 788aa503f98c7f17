package rgbmatrix

import (
	"github.com/fkcurrie/hub75-golang/pkg/gpio"
)

// scanner shifts frames out to the panels.
type scanner struct {
	bus    *gpio.Bus
	pulser gpio.Pulser
	rows   rowAddresser

	clock      uint32
	strobe     uint32
	colorClock uint32

	order    []int
	minPlane int
}

// dump refreshes every scan row once, showing planes from lowPlane up. Data
// for the next plane is shifted in while the previous one is still lit; the
// row address and latch only change while the output is dark.
func (s *scanner) dump(f *Frame, lowPlane int) {
	start := s.minPlane
	if lowPlane > start {
		start = lowPlane
	}
	for _, row := range s.order {
		for plane := start; plane < BitPlanes; plane++ {
			for _, col := range f.Plane(row, plane) {
				s.bus.WriteMaskedBits(col, s.colorClock)
				s.bus.SetBits(s.clock)
			}
			s.bus.ClearBits(s.colorClock)

			s.pulser.WaitPulseFinished()

			s.rows.SetRowAddress(s.bus, row)
			s.bus.Strobe(s.strobe, 0)

			s.pulser.SendPulse(plane)
		}
	}
}
