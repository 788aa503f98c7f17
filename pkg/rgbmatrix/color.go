package rgbmatrix

import (
	"image/color"
	"math"
)

// Pixel is one raw RGB triple.
type Pixel struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}.RGBA()
}

// PixelModel converts any colour to a Pixel, dropping alpha.
var PixelModel = color.ModelFunc(func(c color.Color) color.Color {
	if p, ok := c.(Pixel); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
})

// cie1931 maps brightness (1-100) and a channel value to BitPlanes bits of
// perceived luminance. Index 0 is brightness 1.
var cie1931 = func() (lut [100][256]uint16) {
	for b := range lut {
		for c := range lut[b] {
			lut[b][c] = luminance(uint8(c), b+1)
		}
	}
	return lut
}()

func luminance(c uint8, brightness int) uint16 {
	const out = float64(1<<BitPlanes - 1)
	v := float64(c) * float64(brightness) / 255
	if v <= 8 {
		return uint16(out * v / 902.3)
	}
	return uint16(out * math.Pow((v+16)/116, 3))
}

// lookup returns the PWM values of p. Brightness 0 is dark.
func lookup(brightness int, p Pixel) (r, g, b uint16) {
	if brightness <= 0 {
		return 0, 0, 0
	}
	if brightness > 100 {
		brightness = 100
	}
	lut := &cie1931[brightness-1]
	return lut[p.R], lut[p.G], lut[p.B]
}
