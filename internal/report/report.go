// Package report assembles the per-timeframe indicator sets of one symbol into a
// market report and renders it for the terminal or as JSON.
package report

import (
	"time"

	"cryptoPulse/internal/domain"
	"cryptoPulse/internal/indicators"
)

// Thresholds used when drawing conclusions from RSI.
const (
	OverboughtRSI = 80.0
	OversoldRSI   = 20.0
)

// Intervals whose indicators drive the report conclusions.
const (
	shortTermInterval = "1h"
	longTermInterval  = "1d"
)

// ConclusionKind identifies one of the report conclusions.
type ConclusionKind string

const (
	ConclusionOverbought ConclusionKind = "overbought"
	ConclusionOversold   ConclusionKind = "oversold"
	ConclusionUptrend    ConclusionKind = "uptrend"
	ConclusionDowntrend  ConclusionKind = "downtrend"
)

// Conclusion is a human readable observation derived from the indicators.
type Conclusion struct {
	Kind    ConclusionKind `json:"kind"`
	Message string         `json:"message"`
}

// Frame is the indicator set computed for one timeframe.
type Frame struct {
	Timeframe  domain.Timeframe `json:"timeframe"`
	Indicators *indicators.Set  `json:"indicators"`
}

// Report is one full analysis cycle for a symbol.
type Report struct {
	Symbol            string       `json:"symbol"`
	Price             float64      `json:"current_price"`
	GeneratedAt       time.Time    `json:"generated_at"`
	FibonacciInterval string       `json:"fibonacci_interval"`
	Frames            []Frame      `json:"timeframes"`
	Conclusions       []Conclusion `json:"conclusions"`
}

// Build assembles a Report, keeping frames in the given order.
func Build(symbol string, price float64, frames []Frame, fibInterval string) *Report {
	r := &Report{
		Symbol:            symbol,
		Price:             price,
		GeneratedAt:       time.Now().UTC(),
		FibonacciInterval: fibInterval,
		Frames:            frames,
	}
	r.Conclusions = conclude(r)
	return r
}

// Frame returns the frame computed for interval.
func (r *Report) Frame(interval string) (Frame, bool) {
	for _, f := range r.Frames {
		if f.Timeframe.Interval == interval && f.Indicators != nil {
			return f, true
		}
	}
	return Frame{}, false
}

// conclude applies the RSI and moving-average rules to the 1h and 1d frames.
// Without both frames there is nothing to conclude.
func conclude(r *Report) []Conclusion {
	short, ok := r.Frame(shortTermInterval)
	if !ok {
		return nil
	}
	long, ok := r.Frame(longTermInterval)
	if !ok {
		return nil
	}
	s, l := short.Indicators, long.Indicators

	conclusions := make([]Conclusion, 0, 4)
	if s.RSI > OverboughtRSI || l.RSI > OverboughtRSI {
		conclusions = append(conclusions, Conclusion{
			Kind:    ConclusionOverbought,
			Message: "Market is overbought (RSI > 80). A reversal down is possible.",
		})
	}
	if s.RSI < OversoldRSI || l.RSI < OversoldRSI {
		conclusions = append(conclusions, Conclusion{
			Kind:    ConclusionOversold,
			Message: "Market is oversold (RSI < 20). A rebound up is possible.",
		})
	}
	if s.EMA > s.SMA && l.EMA > l.SMA {
		conclusions = append(conclusions, Conclusion{
			Kind:    ConclusionUptrend,
			Message: "Price is in an uptrend (EMA > SMA).",
		})
	}
	if s.EMA < s.SMA && l.EMA < l.SMA {
		conclusions = append(conclusions, Conclusion{
			Kind:    ConclusionDowntrend,
			Message: "Price is in a downtrend (EMA < SMA).",
		})
	}
	return conclusions
}
