package pricing

import (
	"math"
	"strconv"
)

// Round2 rounds to cents, half away from zero. The value is first rendered
// with a fixed number of decimals so 1.005 rounds to 1.01 and not 1.00.
func Round2(v float64) float64 {
	cents, err := strconv.ParseFloat(strconv.FormatFloat(v*100, 'f', 6, 64), 64)
	if err != nil {
		return math.Round(v*100) / 100
	}
	return math.Round(cents) / 100
}
