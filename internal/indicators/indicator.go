package indicators

import (
	"fmt"
	"math"

	"cryptoPulse/internal/domain"
	"cryptoPulse/internal/ports"
)

const (
	// Window is the trailing period used by every windowed indicator.
	Window = 14
	// MinDataPoints is the shortest series Compute accepts: one full window plus the
	// prior sample needed for the first delta.
	MinDataPoints = Window + 1
)

// FibonacciLevel is one retracement level between the window's high and low.
type FibonacciLevel struct {
	Label string  `json:"level"`
	Ratio float64 `json:"ratio"`
	Value float64 `json:"value"`
}

// Set holds every indicator computed for one (symbol, timeframe) series.
type Set struct {
	SMA            float64          `json:"sma"`
	RSI            float64          `json:"rsi"`
	EMA            float64          `json:"ema"`
	BollingerUpper float64          `json:"bollinger_upper"`
	BollingerLower float64          `json:"bollinger_lower"`
	ADX            float64          `json:"adx"`
	Stochastic     float64          `json:"stochastic"`
	CCI            float64          `json:"cci"`
	Support        float64          `json:"support"`
	Resistance     float64          `json:"resistance"`
	Fibonacci      []FibonacciLevel `json:"fibonacci_levels"`
	Trend          domain.Trend     `json:"market_trend"`
}

// validate checks the input contract of Compute.
func validate(prices, highs, lows []float64) error {
	if len(prices) != len(highs) || len(prices) != len(lows) {
		return fmt.Errorf("%w: mismatched series lengths (closes=%d, highs=%d, lows=%d)",
			ports.ErrInvalidInput, len(prices), len(highs), len(lows))
	}
	if len(prices) < MinDataPoints {
		return fmt.Errorf("%w: not enough data (%d) for a %d-period window, need %d",
			ports.ErrInvalidInput, len(prices), Window, MinDataPoints)
	}
	for _, s := range []struct {
		name   string
		values []float64
	}{{"close", prices}, {"high", highs}, {"low", lows}} {
		for i, v := range s.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite %s value at index %d", ports.ErrInvalidInput, s.name, i)
			}
		}
	}
	return nil
}

// tail returns the most recent Window values.
func tail(values []float64) []float64 {
	return values[len(values)-Window:]
}
