package demo

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkcurrie/hub75-golang/pkg/gpio/gpiotest"
	"github.com/fkcurrie/hub75-golang/pkg/rgbmatrix"
)

type fakeCanvas struct {
	*image.RGBA
	swaps int
	err   error
}

func newFakeCanvas(w, h int) *fakeCanvas {
	return &fakeCanvas{RGBA: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (c *fakeCanvas) Swap(bool) error {
	if c.err != nil {
		return c.err
	}
	c.swaps++
	c.RGBA = image.NewRGBA(c.Bounds())
	return nil
}

// countScene cancels after n frames.
type countScene struct {
	n      int
	cancel context.CancelFunc
	frames []int
}

func (s *countScene) Draw(dst draw.Image, frame int) {
	s.frames = append(s.frames, frame)
	if len(s.frames) == s.n {
		s.cancel()
	}
}

func litPixels(img image.Image) map[color.RGBA]int {
	seen := map[color.RGBA]int{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r|g|bl != 0 {
				seen[color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), 255}]++
			}
		}
	}
	return seen
}

func TestRunStopsWithContext(t *testing.T) {
	for _, fps := range []int{0, 1000} {
		ctx, cancel := context.WithCancel(context.Background())
		s := &countScene{n: 3, cancel: cancel}
		c := newFakeCanvas(8, 8)

		err := Run(ctx, c, s, fps)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []int{0, 1, 2}, s.frames)
		assert.Equal(t, 3, c.swaps)
	}
}

func TestRunReturnsSwapError(t *testing.T) {
	c := newFakeCanvas(8, 8)
	c.err = rgbmatrix.ErrClosed
	err := Run(context.Background(), c, Patterns{}, 60)
	assert.ErrorIs(t, err, rgbmatrix.ErrClosed)
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		frame int
		want  map[color.RGBA]int
	}{
		{0, map[color.RGBA]int{red: 64}},
		{1, map[color.RGBA]int{green: 64}},
		{2, map[color.RGBA]int{blue: 64}},
		{3, map[color.RGBA]int{yellow: 32}},
	}
	for _, tt := range tests {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		Patterns{Hold: 1}.Draw(img, tt.frame)
		assert.Equal(t, tt.want, litPixels(img), "frame %d", tt.frame)
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	Patterns{Hold: 1}.Draw(img, 4)
	assert.Equal(t, color.RGBA{0, 0, 128, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 255, 128, 255}, img.RGBAAt(7, 7))

	// Hold keeps each pattern for several frames.
	img = image.NewRGBA(image.Rect(0, 0, 8, 8))
	Patterns{Hold: 10}.Draw(img, 9)
	assert.Equal(t, map[color.RGBA]int{red: 64}, litPixels(img))
}

func TestSquare(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	Square{}.Draw(img, 0)

	// An upright 22 pixel square around the centre.
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{243, 12, 243, 255}, img.RGBAAt(26, 26))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(4, 4))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(27, 27))

	img = image.NewRGBA(image.Rect(0, 0, 32, 32))
	Square{}.Draw(img, 90)
	assert.NotEqual(t, color.RGBA{}, img.RGBAAt(16, 16))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(5, 5), "rotated corner")
}

func TestText(t *testing.T) {
	s := NewText("Hi", nil)

	img := image.NewRGBA(image.Rect(0, 0, 64, 16))
	s.Draw(img, 0)
	assert.Empty(t, litPixels(img), "starts off the right edge")

	img = image.NewRGBA(image.Rect(0, 0, 64, 16))
	s.Draw(img, 64)
	lit := litPixels(img)
	require.Len(t, lit, 1)
	assert.Greater(t, lit[red], 10)

	// Once fully scrolled out it starts over.
	img = image.NewRGBA(image.Rect(0, 0, 64, 16))
	s.Draw(img, 64+14)
	assert.Empty(t, litPixels(img))
}

const redSquareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10" width="10" height="10">
<rect x="0" y="0" width="10" height="10" fill="#ff0000"/>
</svg>`

func TestSVG(t *testing.T) {
	s, err := NewSVG(strings.NewReader(redSquareSVG), 8, 8)
	require.NoError(t, err)

	c := newFakeCanvas(8, 8)
	s.Draw(c, 0)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, c.RGBAAt(4, 4))

	_, err = NewSVG(strings.NewReader("<svg><rect width="), 8, 8)
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.svg")
	require.NoError(t, os.WriteFile(path, []byte(redSquareSVG), 0644))
	o := Options{Width: 16, Height: 16, Text: "hi", SVG: path}

	for _, name := range []string{"patterns", "square", "text", "svg"} {
		s, err := ByName(name, o)
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}

	_, err := ByName("plasma", o)
	assert.ErrorIs(t, err, ErrUnknownScene)
	_, err = ByName("svg", Options{SVG: filepath.Join(t.TempDir(), "missing.svg")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunOnMatrix(t *testing.T) {
	cfg := rgbmatrix.DefaultConfig()
	cfg.Rows, cfg.Cols = 16, 32
	cfg.Backend = rgbmatrix.BackendCdev
	m, err := rgbmatrix.New(cfg,
		rgbmatrix.WithPort(gpiotest.NewRecorder()),
		rgbmatrix.WithClock(&gpiotest.Clock{}),
		rgbmatrix.WithoutRealtime(),
		rgbmatrix.WithHostRoot(t.TempDir()),
		rgbmatrix.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s := &countScene{n: 5, cancel: cancel}
	assert.ErrorIs(t, Run(ctx, m.Canvas(), s, 0), context.Canceled)
	assert.Len(t, s.frames, 5)
}
