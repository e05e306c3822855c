package domain

// Trend is the market direction derived from RSI and EMA for one timeframe.
type Trend string

const (
	TrendLong         Trend = "Long"
	TrendShort        Trend = "Short"
	TrendUndetermined Trend = "Undetermined"
)

// Timeframe describes one candle history request made per report cycle.
type Timeframe struct {
	Interval string `yaml:"interval" json:"interval"` // Binance kline interval (e.g., "15m", "1d")
	Limit    int    `yaml:"limit" json:"limit"`       // Number of klines requested
	Label    string `yaml:"label" json:"label"`       // Column header used in the report
}

// DefaultTimeframes returns the four timeframes analysed each cycle.
func DefaultTimeframes() []Timeframe {
	return []Timeframe{
		{Interval: "15m", Limit: 96, Label: "15 minutes"},
		{Interval: "1h", Limit: 24, Label: "1 hour"},
		{Interval: "4h", Limit: 24, Label: "4 hours"},
		{Interval: "1d", Limit: 30, Label: "1 day"},
	}
}

// DisplayLabel returns Label, falling back to the interval.
func (t Timeframe) DisplayLabel() string {
	if t.Label == "" {
		return t.Interval
	}
	return t.Label
}
