package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoPulse/internal/domain"
	"cryptoPulse/internal/ports"
)

const tolerance = 1e-9

func constantSeries(value float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = value
	}
	return s
}

func rampSeries(from, to float64) []float64 {
	var s []float64
	for v := from; v <= to; v++ {
		s = append(s, v)
	}
	return s
}

func shift(values []float64, delta float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v + delta
	}
	return out
}

func TestCompute_ConstantSeries(t *testing.T) {
	prices := constantSeries(100, 20)

	set, err := Compute(prices, prices, prices)
	require.NoError(t, err)

	assert.Equal(t, 100.0, set.SMA)
	assert.Equal(t, 100.0, set.EMA)
	assert.Equal(t, set.SMA, set.BollingerUpper)
	assert.Equal(t, set.SMA, set.BollingerLower)
	assert.Equal(t, 0.0, set.Stochastic)
	assert.Equal(t, 0.0, set.CCI)
	assert.Equal(t, 0.0, set.ADX)
	assert.Equal(t, 100.0, set.Support)
	assert.Equal(t, 100.0, set.Resistance)
	// Unchanged closes are zero losses, so RSI falls back to 0 and the oversold rule fires.
	assert.Equal(t, 0.0, set.RSI)
	assert.Equal(t, domain.TrendShort, set.Trend)
}

func TestCompute_RampExample(t *testing.T) {
	prices := rampSeries(99, 113)
	require.Len(t, prices, 15)

	set, err := Compute(prices, prices, prices)
	require.NoError(t, err)

	assert.InDelta(t, 106.5, set.SMA, tolerance)
	assert.Equal(t, 100.0, set.Support)
	assert.Equal(t, 113.0, set.Resistance)
	assert.InDelta(t, 100.0, set.Stochastic, tolerance)
	assert.InDelta(t, 100.0, set.ADX, tolerance) // every step is a pure up move
	assert.Equal(t, 0.0, set.RSI)
	assert.InDelta(t, 107.07947050990856, set.EMA, tolerance)
	assert.InDelta(t, 114.56225774829855, set.BollingerUpper, tolerance)
	assert.InDelta(t, 98.43774225170145, set.BollingerLower, tolerance)
	assert.InDelta(t, 123.80952380952381, set.CCI, tolerance)
	assert.Equal(t, domain.TrendShort, set.Trend)

	expected := []float64{113, 109.932, 108.034, 106.5, 104.966, 102.782, 100}
	require.Len(t, set.Fibonacci, 7)
	for i, lvl := range set.Fibonacci {
		assert.InDelta(t, expected[i], lvl.Value, tolerance, lvl.Label)
	}
}

func TestCompute_MixedSeries(t *testing.T) {
	prices := []float64{100, 102, 101, 104, 103, 105, 107, 106, 108, 110, 109, 111, 113, 112, 114, 113}
	highs := shift(prices, 1.5)
	lows := shift(prices, -1)

	set, err := Compute(prices, highs, lows)
	require.NoError(t, err)

	assert.InDelta(t, 108.28571428571429, set.SMA, tolerance)
	assert.InDelta(t, 67.85714285714286, set.RSI, tolerance)
	assert.InDelta(t, 108.38258080843745, set.EMA, tolerance)
	assert.InDelta(t, 116.1933442874846, set.BollingerUpper, tolerance)
	assert.InDelta(t, 100.37808428394398, set.BollingerLower, tolerance)
	assert.InDelta(t, 100.0, set.ADX, tolerance)
	assert.InDelta(t, 83.87096774193549, set.Stochastic, tolerance)
	assert.InDelta(t, 91.66666666666656, set.CCI, 1e-6)
	assert.Equal(t, 100.0, set.Support)
	assert.Equal(t, 115.5, set.Resistance)
	assert.Equal(t, domain.TrendShort, set.Trend)

	expected := []float64{115.5, 111.842, 109.579, 107.75, 105.921, 103.317, 100}
	for i, lvl := range set.Fibonacci {
		assert.InDelta(t, expected[i], lvl.Value, 1e-9, lvl.Label)
	}
}

func TestCompute_LongTrend(t *testing.T) {
	prices := []float64{110, 108, 109, 107, 108, 106, 107, 105, 106, 104, 105, 103, 104, 102, 103, 101}

	set, err := Compute(prices, prices, prices)
	require.NoError(t, err)

	assert.InDelta(t, 100.0/3, set.RSI, tolerance)
	assert.Greater(t, set.EMA, prices[len(prices)-1])
	assert.Equal(t, domain.TrendLong, set.Trend)
}

func TestCompute_FibonacciLabels(t *testing.T) {
	prices := []float64{5, 9, 3, 7, 2, 8, 6, 4, 1, 9, 5, 3, 7, 2, 8, 6, 4}
	set, err := Compute(prices, shift(prices, 2), shift(prices, -0.5))
	require.NoError(t, err)

	labels := make([]string, 0, len(set.Fibonacci))
	for _, lvl := range set.Fibonacci {
		labels = append(labels, lvl.Label)
	}
	assert.Equal(t, []string{"0%", "23.6%", "38.2%", "50%", "61.8%", "78.6%", "100%"}, labels)
	assert.Equal(t, set.Resistance, set.Fibonacci[0].Value)
	assert.Equal(t, set.Support, set.Fibonacci[6].Value)
	for i := 1; i < len(set.Fibonacci); i++ {
		assert.LessOrEqual(t, set.Fibonacci[i].Value, set.Fibonacci[i-1].Value)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	prices := []float64{1.2, 1.25, 1.22, 1.3, 1.28, 1.31, 1.27, 1.35, 1.33, 1.4, 1.38, 1.36, 1.41, 1.39, 1.45, 1.43}
	highs := shift(prices, 0.03)
	lows := shift(prices, -0.02)

	first, err := Compute(prices, highs, lows)
	require.NoError(t, err)
	second, err := Compute(prices, highs, lows)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	prices := rampSeries(1, 20)
	highs := shift(prices, 1)
	lows := shift(prices, -1)
	before := append([]float64(nil), prices...)

	_, err := Compute(prices, highs, lows)
	require.NoError(t, err)
	assert.Equal(t, before, prices)
}

func TestCompute_InvalidInput(t *testing.T) {
	valid := rampSeries(1, 15)

	tests := []struct {
		name   string
		prices []float64
		highs  []float64
		lows   []float64
	}{
		{name: "empty", prices: nil, highs: nil, lows: nil},
		{name: "three closes", prices: []float64{1, 2, 3}, highs: []float64{1, 2, 3}, lows: []float64{1, 2, 3}},
		{name: "single close", prices: []float64{1}, highs: []float64{1}, lows: []float64{1}},
		{name: "one short of the minimum", prices: valid[:14], highs: valid[:14], lows: valid[:14]},
		{name: "highs length mismatch", prices: valid, highs: valid[:14], lows: valid},
		{name: "lows length mismatch", prices: valid, highs: valid, lows: append(append([]float64(nil), valid...), 16)},
		{name: "NaN close", prices: append(append([]float64(nil), valid[:14]...), math.NaN()), highs: valid, lows: valid},
		{name: "infinite high", prices: valid, highs: append([]float64{math.Inf(1)}, valid[1:]...), lows: valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var set *Set
			var err error
			require.NotPanics(t, func() { set, err = Compute(tt.prices, tt.highs, tt.lows) })
			require.Error(t, err)
			assert.ErrorIs(t, err, ports.ErrInvalidInput)
			assert.Nil(t, set)
		})
	}
}

func TestComputeKlines(t *testing.T) {
	prices := rampSeries(99, 113)
	klines := make([]*domain.Kline, len(prices))
	for i, p := range prices {
		klines[i] = &domain.Kline{High: p, Low: p, Close: p}
	}

	fromKlines, err := ComputeKlines(klines)
	require.NoError(t, err)
	direct, err := Compute(prices, prices, prices)
	require.NoError(t, err)
	assert.Equal(t, direct, fromKlines)

	_, err = ComputeKlines(klines[:10])
	assert.ErrorIs(t, err, ports.ErrInvalidInput)
}
