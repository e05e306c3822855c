package indicators

import "gonum.org/v1/gonum/stat"

// RSI computes the relative strength index over every close-to-close change of the series.
//
// Unchanged closes count as zero-valued losses. When there are no losses the relative
// strength falls back to 0, so a series made only of gains yields an RSI of 0, not 100.
// Fewer than two closes also yield 0.
func RSI(prices []float64) float64 {
	var gains, losses []float64
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
		} else {
			losses = append(losses, -change)
		}
	}

	avgGain := meanOrZero(gains)
	avgLoss := meanOrZero(losses)

	rs := 0.0
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100 - 100/(1+rs)
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
