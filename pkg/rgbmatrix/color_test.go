package rgbmatrix

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLuminance(t *testing.T) {
	assert.Equal(t, uint16(2047), luminance(255, 100))
	assert.Equal(t, uint16(0), luminance(0, 100))
	assert.Equal(t, uint16(2), luminance(255, 1))
	// v = 8 is the last point of the linear segment: 2047*8/902.3.
	assert.Equal(t, uint16(18), luminance(204, 10))

	for b := 1; b <= 100; b++ {
		prev := uint16(0)
		for c := 0; c < 256; c++ {
			v := cie1931[b-1][c]
			require.GreaterOrEqual(t, v, prev, "brightness %d value %d", b, c)
			prev = v
		}
	}
}

func TestLookup(t *testing.T) {
	r, g, b := lookup(100, Pixel{R: 255, G: 0, B: 255})
	assert.Equal(t, [3]uint16{2047, 0, 2047}, [3]uint16{r, g, b})

	r, g, b = lookup(0, Pixel{R: 255, G: 255, B: 255})
	assert.Equal(t, [3]uint16{0, 0, 0}, [3]uint16{r, g, b})

	r, _, _ = lookup(50, Pixel{R: 255})
	assert.Less(t, r, uint16(2047))
	assert.Greater(t, r, uint16(0))
}

func TestPixelModel(t *testing.T) {
	p := PixelModel.Convert(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	assert.Equal(t, Pixel{R: 10, G: 20, B: 30}, p)

	r, g, b, a := Pixel{R: 255}.RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestLEDSequencePermute(t *testing.T) {
	const r, g, b = 1, 2, 4
	tests := []struct {
		seq              LEDSequence
		red, green, blue uint32
	}{
		{RGB, r, g, b},
		{RBG, r, b, g},
		{GRB, g, r, b},
		{GBR, g, b, r},
		{BRG, b, r, g},
		{BGR, b, g, r},
	}
	for _, tt := range tests {
		t.Run(tt.seq.String(), func(t *testing.T) {
			red, green, blue := tt.seq.permute(r, g, b)
			assert.Equal(t, [3]uint32{tt.red, tt.green, tt.blue}, [3]uint32{red, green, blue})
		})
	}
}

func TestParseLEDSequence(t *testing.T) {
	s, err := ParseLEDSequence("bgr")
	require.NoError(t, err)
	assert.Equal(t, BGR, s)

	s, err = ParseLEDSequence("")
	require.NoError(t, err)
	assert.Equal(t, RGB, s)

	_, err = ParseLEDSequence("RGBW")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
