package domain

import "time"

// Kline is one candle of a symbol's price history.
type Kline struct {
	OpenTime  time.Time `json:"open_time"`
	CloseTime time.Time `json:"close_time"`
	Symbol    string    `json:"symbol"`
	Interval  string    `json:"interval"` // e.g., "15m", "1d"
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	IsFinal   bool      `json:"is_final"` // false for the still-open candle at the end of a REST response
}
