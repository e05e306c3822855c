package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"cryptoPulse/internal/domain"
)

// Renderer writes reports to the terminal.
type Renderer struct {
	price   *color.Color
	heading *color.Color
	warning *color.Color
	bullish *color.Color
	bearish *color.Color
}

// NewRenderer creates a Renderer. With noColor set no ANSI sequences are written,
// otherwise fatih/color decides based on the attached terminal.
func NewRenderer(noColor bool) *Renderer {
	r := &Renderer{
		price:   color.New(color.FgCyan),
		heading: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		bullish: color.New(color.FgGreen),
		bearish: color.New(color.FgRed),
	}
	if noColor {
		for _, c := range []*color.Color{r.price, r.heading, r.warning, r.bullish, r.bearish} {
			c.DisableColor()
		}
	}
	return r
}

// Render prints the price, the conclusions, the support/resistance/trend table and
// the Fibonacci levels of the report.
func (r *Renderer) Render(w io.Writer, rep *Report) error {
	if rep == nil {
		return fmt.Errorf("render: nil report")
	}

	fmt.Fprintln(w, r.price.Sprintf("\n%s current price: $%.2f", rep.Symbol, rep.Price))

	fmt.Fprintln(w, "\nConclusions:")
	if len(rep.Conclusions) == 0 {
		fmt.Fprintln(w, "No clear signal.")
	}
	for _, c := range rep.Conclusions {
		fmt.Fprintln(w, r.conclusionColor(c.Kind).Sprint(c.Message))
	}

	fmt.Fprintln(w, r.heading.Sprint("\nSupport, resistance and trend:"))
	fmt.Fprintln(w, r.levelsTable(rep.Frames))

	fib, ok := rep.Frame(rep.FibonacciInterval)
	if !ok {
		fmt.Fprintln(w, r.warning.Sprintf("\nNo Fibonacci levels for %s.", rep.FibonacciInterval))
		return nil
	}
	fmt.Fprintln(w, r.heading.Sprintf("\nFibonacci levels (%s):", fib.Timeframe.DisplayLabel()))
	_, err := fmt.Fprintln(w, fibonacciTable(fib))
	return err
}

// RenderJSON writes the report as indented JSON.
func (r *Renderer) RenderJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	return nil
}

func (r *Renderer) conclusionColor(kind ConclusionKind) *color.Color {
	switch kind {
	case ConclusionUptrend:
		return r.bullish
	case ConclusionDowntrend:
		return r.bearish
	default:
		return r.warning
	}
}

func (r *Renderer) highlightTrend(trend domain.Trend) string {
	switch trend {
	case domain.TrendShort:
		return r.bearish.Sprint(string(trend))
	case domain.TrendLong:
		return r.bullish.Sprint(string(trend))
	default:
		return string(trend)
	}
}

func (r *Renderer) levelsTable(frames []Frame) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = true
	t.Style().Format.Header = text.FormatDefault

	header := table.Row{"Parameter"}
	support := table.Row{"Support"}
	resistance := table.Row{"Resistance"}
	trend := table.Row{"Market trend"}
	for _, f := range frames {
		header = append(header, f.Timeframe.DisplayLabel())
		if f.Indicators == nil {
			support = append(support, "-")
			resistance = append(resistance, "-")
			trend = append(trend, "-")
			continue
		}
		support = append(support, fmt.Sprintf("%.2f", f.Indicators.Support))
		resistance = append(resistance, fmt.Sprintf("%.2f", f.Indicators.Resistance))
		trend = append(trend, r.highlightTrend(f.Indicators.Trend))
	}

	t.AppendHeader(header)
	t.AppendRows([]table.Row{support, resistance, trend})
	return t.Render()
}

func fibonacciTable(f Frame) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = true

	labels := table.Row{}
	values := table.Row{}
	for _, level := range f.Indicators.Fibonacci {
		labels = append(labels, level.Label)
		values = append(values, fmt.Sprintf("%.2f", level.Value))
	}
	t.AppendRows([]table.Row{labels, values})
	return t.Render()
}
