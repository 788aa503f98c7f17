package demo

import (
	"image/color"
	"image/draw"
	"math"
)

// Square is a square rotating half a degree per frame, shaded by position.
type Square struct{}

func (Square) Draw(dst draw.Image, frame int) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < side {
		side = h
	}
	cx, cy := w/2, h/2

	// Half the side of the square; its diagonal stays on the canvas.
	display := int(float64(side)*0.7) / 2

	angle := float64(frame) / 2 * math.Pi / 180
	sin, cos := math.Sincos(angle)
	for dy := -display; dy < display; dy++ {
		for dx := -display; dx < display; dx++ {
			px := float64(dx)*cos - float64(dy)*sin + float64(cx)
			py := float64(dx)*sin + float64(dy)*cos + float64(cy)
			if px < 0 || py < 0 {
				continue
			}
			c := color.RGBA{
				R: shade(dx, -display, display),
				G: 255 - shade(dy, -display, display),
				B: shade(dy, -display, display),
				A: 255,
			}
			dst.Set(b.Min.X+int(px), b.Min.Y+int(py), c)
		}
	}
}

func shade(v, low, high int) uint8 {
	switch {
	case high <= low, v < low:
		return 0
	case v > high:
		return 255
	}
	return uint8(255 * (v - low) / (high - low))
}
