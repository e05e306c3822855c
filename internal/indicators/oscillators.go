package indicators

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// stochastic locates the last close inside the trailing Window high/low range, in percent.
// A flat range yields 0.
func stochastic(prices, highs, lows []float64) float64 {
	highest := floats.Max(tail(highs))
	lowest := floats.Min(tail(lows))
	if highest == lowest {
		return 0
	}
	return (prices[len(prices)-1] - lowest) / (highest - lowest) * 100
}

// TypicalPrices returns (high+low+close)/3 for every sample. Sequences of different
// length are read up to the shortest one.
func TypicalPrices(prices, highs, lows []float64) []float64 {
	tp := make([]float64, min(len(prices), len(highs), len(lows)))
	for i := range tp {
		tp[i] = (highs[i] + lows[i] + prices[i]) / 3
	}
	return tp
}

// commodityChannelIndex is the CCI of the last typical price against the trailing Window
// typical prices, using the 0.015 Lambert constant. Zero mean deviation yields 0.
func commodityChannelIndex(prices, highs, lows []float64) float64 {
	tp := TypicalPrices(prices, highs, lows)
	window := tail(tp)
	smaTP := stat.Mean(window, nil)

	meanDeviation := 0.0
	for _, v := range window {
		meanDeviation += math.Abs(v - smaTP)
	}
	meanDeviation /= Window

	if meanDeviation == 0 {
		return 0
	}
	return (tp[len(tp)-1] - smaTP) / (0.015 * meanDeviation)
}
