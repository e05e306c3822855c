package indicators

import (
	"cryptoPulse/internal/domain"
)

// Compute derives the full indicator set from aligned close, high and low sequences.
//
// Windowed indicators (SMA, Bollinger, ADX, stochastic, CCI window, support/resistance and
// Fibonacci) use the trailing Window samples. RSI, EMA and the typical price series behind CCI
// use the whole input. The input slices are only read.
//
// The series must hold at least MinDataPoints finite values per sequence and all three
// sequences must have the same length, otherwise an error wrapping ports.ErrInvalidInput is
// returned together with a nil Set.
func Compute(prices, highs, lows []float64) (*Set, error) {
	if err := validate(prices, highs, lows); err != nil {
		return nil, err
	}

	sma := simpleMA(prices)
	rsi := RSI(prices)
	ema := exponentialMA(prices)
	upper, lower := bollingerBands(prices)
	support, resistance := supportResistance(highs, lows)

	return &Set{
		SMA:            sma,
		RSI:            rsi,
		EMA:            ema,
		BollingerUpper: upper,
		BollingerLower: lower,
		ADX:            averageDirectionalIndex(highs, lows),
		Stochastic:     stochastic(prices, highs, lows),
		CCI:            commodityChannelIndex(prices, highs, lows),
		Support:        support,
		Resistance:     resistance,
		Fibonacci:      fibonacciRetracement(highs, lows),
		Trend:          ClassifyTrend(rsi, ema, prices[len(prices)-1]),
	}, nil
}

// ComputeKlines runs Compute over a kline series.
func ComputeKlines(klines []*domain.Kline) (*Set, error) {
	closes, highs, lows := domain.SplitSeries(klines)
	return Compute(closes, highs, lows)
}
