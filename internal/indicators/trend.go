package indicators

import "cryptoPulse/internal/domain"

const (
	rsiOversold   = 20.0
	rsiOverbought = 80.0
)

// ClassifyTrend maps RSI and EMA against the last close to a trend.
// The Short conditions are checked first and win when both sides match.
func ClassifyTrend(rsi, ema, lastClose float64) domain.Trend {
	switch {
	case rsi < rsiOversold || ema < lastClose:
		return domain.TrendShort
	case rsi > rsiOverbought || ema > lastClose:
		return domain.TrendLong
	default:
		return domain.TrendUndetermined
	}
}
