package rgbmatrix

import (
	"time"
)

// ditherStart returns, per refresh cycle modulo four, the lowest plane that
// is shown. Skipped planes are made up by the cycles that show them.
func ditherStart(ditherBits int) [4]int {
	switch ditherBits {
	case 1:
		return [4]int{0, 1, 0, 1}
	case 2:
		return [4]int{0, 1, 2, 2}
	}
	return [4]int{0, 0, 0, 0}
}

// framePeriod is the minimum time between refresh cycle starts.
func framePeriod(refreshRate int) time.Duration {
	if refreshRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(refreshRate)
}

// scanOrder returns the order scan rows are refreshed in. Interlacing shows
// the even rows first, then the odd ones.
func scanOrder(doubleRows int, interlaced bool) []int {
	order := make([]int, doubleRows)
	half := (doubleRows + 1) / 2
	for i := range order {
		switch {
		case !interlaced:
			order[i] = i
		case i < half:
			order[i] = 2 * i
		default:
			order[i] = 2*(i-half) + 1
		}
	}
	return order
}
