package hwmap

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkcurrie/hub75-golang/pkg/gpio"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"regular", "regular"},
		{"Regular", "regular"},
		{"adafruit-hat", "adafruit-hat"},
		{"AdafruitHat", "adafruit-hat"},
		{"AdafruitHatPwm", "adafruit-hat-pwm"},
		{"adafruit_hat_pwm", "adafruit-hat-pwm"},
		{"RegularPi1", "regular-pi1"},
		{"classic", "classic"},
		{"Classic-Pi1", "classic-pi1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Name)
		})
	}

	_, err := ByName("bonnet")
	assert.True(t, errors.Is(err, ErrUnknownMapping))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"adafruit-hat", "adafruit-hat-pwm", "classic", "classic-pi1", "regular", "regular-pi1",
	}, Names())
}

func TestPresetsAreBitExact(t *testing.T) {
	regular := Regular()
	assert.Equal(t, gpio.Bits(18), regular.OutputEnable)
	assert.Equal(t, gpio.Bits(17), regular.Clock)
	assert.Equal(t, gpio.Bits(4), regular.Strobe)
	assert.Equal(t, []uint32{gpio.Bits(22), gpio.Bits(23), gpio.Bits(24), gpio.Bits(25), gpio.Bits(15)},
		[]uint32{regular.A, regular.B, regular.C, regular.D, regular.E})
	assert.Equal(t, ColorBits{
		R1: gpio.Bits(11), G1: gpio.Bits(27), B1: gpio.Bits(7),
		R2: gpio.Bits(8), G2: gpio.Bits(9), B2: gpio.Bits(10),
	}, regular.Chains[0])
	assert.Equal(t, gpio.Bits(14, 2, 3, 26, 16, 21), regular.Chains[2].Used())

	hat := AdafruitHat()
	assert.Equal(t, gpio.Bits(4), hat.OutputEnable)
	assert.Equal(t, gpio.Bits(21), hat.Strobe)
	assert.Equal(t, ColorBits{
		R1: gpio.Bits(5), G1: gpio.Bits(13), B1: gpio.Bits(6),
		R2: gpio.Bits(12), G2: gpio.Bits(16), B2: gpio.Bits(23),
	}, hat.Chains[0])

	pwm := AdafruitHatPWM()
	assert.Equal(t, gpio.Bits(18), pwm.OutputEnable)
	assert.Equal(t, hat.Chains, pwm.Chains)

	pi1 := RegularPi1()
	assert.Equal(t, gpio.Bits(15, 27), pi1.Chains[0].R1)
	assert.Equal(t, gpio.Bits(21), pi1.Chains[0].G1)
	assert.Equal(t, 1, pi1.MaxParallel())

	classic := Classic()
	assert.Equal(t, gpio.Bits(27), classic.OutputEnable)
	assert.Equal(t, gpio.Bits(11), classic.Clock)
	assert.Zero(t, classic.E)
	assert.Equal(t, gpio.Bits(15), classic.Chains[2].R2)

	classicPi1 := ClassicPi1()
	assert.Equal(t, gpio.Bits(0, 2), classicPi1.OutputEnable)
	assert.Equal(t, gpio.Bits(1, 3), classicPi1.Clock)
}

func TestMasks(t *testing.T) {
	m := Regular()
	assert.Equal(t, 3, m.MaxParallel())
	assert.Equal(t, 1, AdafruitHat().MaxParallel())

	assert.Equal(t, gpio.Bits(11, 27, 7, 8, 9, 10, 17), m.ColorClockMask(1))
	assert.Equal(t, gpio.Bits(11, 27, 7, 8, 9, 10, 12, 5, 6, 19, 13, 20, 17), m.ColorClockMask(2))

	used := m.UsedBits()
	assert.Equal(t, gpio.Bits(18, 17, 4)|m.PanelBits(3), used)
	assert.Zero(t, used&(m.A|m.B|m.C|m.D|m.E), "row address lines belong to the row setter")
}
