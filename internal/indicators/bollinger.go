package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// bollingerBands returns SMA ± 2σ, σ being the population standard deviation of the
// trailing Window closes.
func bollingerBands(prices []float64) (upper, lower float64) {
	window := tail(prices)
	sma := simpleMA(prices)
	stddev := math.Sqrt(stat.Moment(2, window, nil))
	return sma + 2*stddev, sma - 2*stddev
}
