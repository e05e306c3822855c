package indicators

import "gonum.org/v1/gonum/stat"

// simpleMA is the arithmetic mean of the trailing Window closes.
func simpleMA(prices []float64) float64 {
	return stat.Mean(tail(prices), nil)
}

// exponentialMA smooths the whole series with k = 2/(N+1), N being the series length.
// The accumulator starts at the first close and the recurrence is applied to every
// close including that first one.
func exponentialMA(prices []float64) float64 {
	ema := prices[0]
	multiplier := 2.0 / float64(len(prices)+1)
	for _, price := range prices {
		ema = (price-ema)*multiplier + ema
	}
	return ema
}
