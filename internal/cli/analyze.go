package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cryptoPulse/internal/domain"
	"cryptoPulse/internal/indicators"
	"cryptoPulse/internal/report"
	"cryptoPulse/internal/utils"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file.csv]",
	Short: "compute the indicators of an exported kline CSV offline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, appLogger, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		klines, err := utils.ReadKlinesFromCSV(args[0])
		if err != nil {
			return fmt.Errorf("read '%s': %w", args[0], err)
		}
		rep, err := analyzeKlines(klines)
		if err != nil {
			return err
		}
		appLogger.Debug(cmd.Context(), "Analyzed kline file", map[string]interface{}{"file": args[0], "count": len(klines)})

		renderer := report.NewRenderer(cfg.NoColor)
		if asJSON {
			return renderer.RenderJSON(cmd.OutOrStdout(), rep)
		}
		return renderer.Render(cmd.OutOrStdout(), rep)
	},
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print the report as JSON")
	RootCmd.AddCommand(analyzeCmd)
}

// analyzeKlines builds a single-timeframe report priced at the last close.
func analyzeKlines(klines []*domain.Kline) (*report.Report, error) {
	set, err := indicators.ComputeKlines(klines)
	if err != nil {
		return nil, err
	}

	last := klines[len(klines)-1]
	tf := domain.Timeframe{Interval: last.Interval, Limit: len(klines)}
	return report.Build(last.Symbol, last.Close, []report.Frame{{Timeframe: tf, Indicators: set}}, tf.Interval), nil
}
