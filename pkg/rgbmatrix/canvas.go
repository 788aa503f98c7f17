package rgbmatrix

import (
	"image"
	"image/color"
)

// Canvas is the drawing surface of a Matrix. Drawing goes to a back buffer
// that is only shown after Swap. A Canvas must be used from one goroutine.
type Canvas struct {
	width, height int
	front, back   []Pixel
	brightness    int

	enc   *encoder
	ex    *exchange
	spare *Frame
	fps   *frameRate
}

func newCanvas(width, height, brightness int, enc *encoder, ex *exchange, spare *Frame) *Canvas {
	return &Canvas{
		width:      width,
		height:     height,
		front:      make([]Pixel, width*height),
		back:       make([]Pixel, width*height),
		brightness: brightness,
		enc:        enc,
		ex:         ex,
		spare:      spare,
	}
}

// Width returns the logical width after pixel mapping.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the logical height after pixel mapping.
func (c *Canvas) Height() int {
	return c.height
}

// SetPixel sets a pixel of the back buffer. Coordinates outside the canvas
// are ignored.
func (c *Canvas) SetPixel(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.back[y*c.width+x] = Pixel{R: r, G: g, B: b}
}

// Pixel returns a pixel of the back buffer, black outside the canvas.
func (c *Canvas) Pixel(x, y int) Pixel {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return Pixel{}
	}
	return c.back[y*c.width+x]
}

// Shown returns a pixel of the buffer handed over by the last Swap, black
// outside the canvas.
func (c *Canvas) Shown(x, y int) Pixel {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return Pixel{}
	}
	return c.front[y*c.width+x]
}

// Fill sets every pixel of the back buffer.
func (c *Canvas) Fill(r, g, b uint8) {
	p := Pixel{R: r, G: g, B: b}
	for i := range c.back {
		c.back[i] = p
	}
}

// Clear sets the back buffer to black.
func (c *Canvas) Clear() {
	c.Fill(0, 0, 0)
}

// SetBrightness sets the brightness in percent used from the next Swap on.
func (c *Canvas) SetBrightness(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	c.brightness = percent
}

// Brightness returns the brightness in percent.
func (c *Canvas) Brightness() int {
	return c.brightness
}

// Swap shows the back buffer. The buffers trade places and the new back
// buffer starts out black. With waitVSync, Swap returns once the render loop
// has started showing the new frame.
func (c *Canvas) Swap(waitVSync bool) error {
	if c.spare == nil {
		return ErrClosed
	}
	f := c.spare
	c.enc.encode(f, c.back, c.brightness)
	next, seq, err := c.ex.publish(f)
	if err != nil {
		c.spare = nil
		return err
	}
	c.spare = next
	if c.fps != nil {
		c.fps.update()
	}

	c.front, c.back = c.back, c.front
	for i := range c.back {
		c.back[i] = Pixel{}
	}
	if waitVSync {
		return c.ex.waitShown(seq)
	}
	return nil
}

// ColorModel implements draw.Image.
func (c *Canvas) ColorModel() color.Model {
	return PixelModel
}

// Bounds implements draw.Image.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// At implements draw.Image on the back buffer.
func (c *Canvas) At(x, y int) color.Color {
	return c.Pixel(x, y)
}

// Set implements draw.Image on the back buffer.
func (c *Canvas) Set(x, y int, col color.Color) {
	p := PixelModel.Convert(col).(Pixel)
	c.SetPixel(x, y, p.R, p.G, p.B)
}
