package rgbmatrix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDitherStart(t *testing.T) {
	assert.Equal(t, [4]int{0, 0, 0, 0}, ditherStart(0))
	assert.Equal(t, [4]int{0, 1, 0, 1}, ditherStart(1))
	assert.Equal(t, [4]int{0, 1, 2, 2}, ditherStart(2))
}

func TestFramePeriod(t *testing.T) {
	assert.Equal(t, time.Duration(0), framePeriod(0))
	assert.Equal(t, 8333333*time.Nanosecond, framePeriod(120))
	assert.Equal(t, 10*time.Millisecond, framePeriod(100))
}

func TestScanOrder(t *testing.T) {
	tests := []struct {
		rows       int
		interlaced bool
		want       []int
	}{
		{4, false, []int{0, 1, 2, 3}},
		{8, true, []int{0, 2, 4, 6, 1, 3, 5, 7}},
		{3, true, []int{0, 2, 1}},
		{1, true, []int{0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scanOrder(tt.rows, tt.interlaced))
	}
}
