package indicators

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// TrueRange returns the true range for every index i >= 1:
// max(high-low, |high-prevClose|, |low-prevClose|).
// Sequences of different length are read up to the shortest one.
func TrueRange(highs, lows, closes []float64) []float64 {
	n := min(len(highs), len(lows), len(closes))
	if n < 2 {
		return nil
	}
	ranges := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		tr1 := highs[i] - lows[i]
		tr2 := math.Abs(highs[i] - closes[i-1])
		tr3 := math.Abs(lows[i] - closes[i-1])
		ranges = append(ranges, math.Max(tr1, math.Max(tr2, tr3)))
	}
	return ranges
}

// DirectionalIndex returns the DX value of every index i >= 1.
// Only the dominant move counts: +DM is kept when the up move exceeds the down move,
// -DM when the down move exceeds the up move. DX is 0 when neither side moved.
func DirectionalIndex(highs, lows []float64) []float64 {
	n := min(len(highs), len(lows))
	if n < 2 {
		return nil
	}
	dx := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]

		dmPlus, dmMinus := 0.0, 0.0
		if upMove > downMove {
			dmPlus = math.Max(upMove, 0)
		}
		if downMove > upMove {
			dmMinus = math.Max(downMove, 0)
		}

		value := 0.0
		if sum := dmPlus + dmMinus; sum != 0 {
			value = 100 * math.Abs(dmPlus-dmMinus) / sum
		}
		dx = append(dx, value)
	}
	return dx
}

// averageDirectionalIndex is the mean of the trailing Window DX values.
func averageDirectionalIndex(highs, lows []float64) float64 {
	dx := DirectionalIndex(highs, lows)
	return floats.Sum(tail(dx)) / Window
}
