package demo

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	red    = color.RGBA{R: 255, A: 255}
	green  = color.RGBA{G: 255, A: 255}
	blue   = color.RGBA{B: 255, A: 255}
	yellow = color.RGBA{R: 255, G: 255, A: 255}
)

// Patterns cycles through solid red, green and blue, an animated
// checkerboard and a colour gradient, showing each for Hold frames.
type Patterns struct {
	Hold int
}

const checkerCell = 4

func (p Patterns) Draw(dst draw.Image, frame int) {
	hold := p.Hold
	if hold <= 0 {
		hold = 1
	}
	b := dst.Bounds()
	switch (frame / hold) % 5 {
	case 0:
		fill(dst, red)
	case 1:
		fill(dst, green)
	case 2:
		fill(dst, blue)
	case 3:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if (y/checkerCell+x/checkerCell+frame/8)%2 == 0 {
					dst.Set(x, y, yellow)
				}
			}
		}
	case 4:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst.Set(x, y, color.RGBA{
					R: scale(x-b.Min.X, b.Dx()),
					G: scale(y-b.Min.Y, b.Dy()),
					B: 128,
					A: 255,
				})
			}
		}
	}
}

func fill(dst draw.Image, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// scale maps v in [0, n) onto [0, 255].
func scale(v, n int) uint8 {
	if n <= 1 {
		return 0
	}
	return uint8(255 * v / (n - 1))
}
