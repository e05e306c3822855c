package domain

// SplitSeries extracts the aligned close, high and low sequences of a kline series.
// Nil klines are not expected; the data source never produces them.
func SplitSeries(klines []*Kline) (closes, highs, lows []float64) {
	closes = make([]float64, len(klines))
	highs = make([]float64, len(klines))
	lows = make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
		highs[i] = k.High
		lows[i] = k.Low
	}
	return closes, highs, lows
}
