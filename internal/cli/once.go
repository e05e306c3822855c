package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cryptoPulse/internal/app"
	"cryptoPulse/internal/report"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "print a single report and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, appLogger, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		if cfg.Symbol == "" {
			return fmt.Errorf("--symbol or SYMBOL is required")
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		source, err := newMarketDataSource(ctx, cfg, appLogger)
		if err != nil {
			return err
		}

		service, err := app.NewReportService(cfg, appLogger, source, report.NewRenderer(cfg.NoColor),
			app.WithOutput(cmd.OutOrStdout()),
			app.WithJSON(asJSON),
		)
		if err != nil {
			return err
		}

		_, err = service.RunCycle(ctx)
		return err
	},
}

func init() {
	onceCmd.Flags().Bool("json", false, "print the report as JSON")
	RootCmd.AddCommand(onceCmd)
}
