package demo

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Text scrolls a message from right to left, one pixel per frame.
type Text struct {
	Message string
	Color   color.Color
	face    font.Face
}

// NewText returns a scrolling text scene in the 7x13 bitmap font. A nil
// colour draws red.
func NewText(message string, c color.Color) *Text {
	if c == nil {
		c = red
	}
	return &Text{Message: message, Color: c, face: basicfont.Face7x13}
}

func (t *Text) Draw(dst draw.Image, frame int) {
	b := dst.Bounds()
	width := font.MeasureString(t.face, t.Message).Ceil()
	x := b.Dx() - frame%(width+b.Dx())

	m := t.face.Metrics()
	y := (b.Dy() + m.Ascent.Ceil() - m.Descent.Ceil()) / 2

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(t.Color),
		Face: t.face,
		Dot:  fixed.P(b.Min.X+x, b.Min.Y+y),
	}
	d.DrawString(t.Message)
}
