package indicators

import "gonum.org/v1/gonum/floats"

var fibonacciRatios = []struct {
	label string
	ratio float64
}{
	{"0%", 0},
	{"23.6%", 0.236},
	{"38.2%", 0.382},
	{"50%", 0.5},
	{"61.8%", 0.618},
	{"78.6%", 0.786},
	{"100%", 1},
}

// supportResistance returns the lowest low and the highest high of the trailing Window.
func supportResistance(highs, lows []float64) (support, resistance float64) {
	return floats.Min(tail(lows)), floats.Max(tail(highs))
}

// fibonacciRetracement returns the seven retracement levels measured down from the trailing
// Window high, ordered from 0% to 100%.
func fibonacciRetracement(highs, lows []float64) []FibonacciLevel {
	maxPrice := floats.Max(tail(highs))
	minPrice := floats.Min(tail(lows))
	diff := maxPrice - minPrice

	levels := make([]FibonacciLevel, 0, len(fibonacciRatios))
	for _, r := range fibonacciRatios {
		value := maxPrice - r.ratio*diff
		switch r.ratio {
		case 0:
			value = maxPrice
		case 1:
			value = minPrice
		}
		levels = append(levels, FibonacciLevel{Label: r.label, Ratio: r.ratio, Value: value})
	}
	return levels
}
