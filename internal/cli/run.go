package cli

import (
	"context"

	"github.com/spf13/cobra"

	"cryptoPulse/internal/app"
	"cryptoPulse/internal/metrics"
	"cryptoPulse/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "print a report now and again on every refresh interval",
	RunE:  runReport,
}

func init() {
	addRunFlags(runCmd)
	RootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-spinner", false, "skip the startup animation")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, appLogger, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	if noSpinner, _ := cmd.Flags().GetBool("no-spinner"); !noSpinner {
		if err := Spin(ctx, cmd.ErrOrStderr(), "Starting market analysis", spinnerSteps, spinnerDelay); err != nil {
			return err
		}
	}

	if cfg.Symbol == "" {
		symbol, err := PromptSymbol(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		cfg.Symbol = symbol
	}

	source, err := newMarketDataSource(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to initialize market data source")
		return err
	}

	service, err := app.NewReportService(cfg, appLogger, source, report.NewRenderer(cfg.NoColor), app.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		appLogger.Error(ctx, err, "Failed to initialize report service")
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		server := metrics.NewServer(cfg.MetricsAddr, appLogger)
		go func() {
			if err := server.Serve(ctx); err != nil {
				appLogger.Error(ctx, err, "Metrics server stopped", map[string]interface{}{"addr": cfg.MetricsAddr})
			}
		}()
	}

	if err := service.Start(ctx); err != nil {
		appLogger.Error(ctx, err, "Report service exited with error")
		return err
	}
	appLogger.Info(ctx, "Application finished gracefully.")
	return nil
}
