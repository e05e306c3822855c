package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cryptoPulse/config"
	"cryptoPulse/internal/adapters/binanceclient"
	"cryptoPulse/internal/adapters/logger"
)

var RootCmd = &cobra.Command{
	Use:   "cryptopulse",
	Short: "crypto market indicator reports",
	Long:  "cryptopulse polls Binance and prints support, resistance, trend and Fibonacci levels for one symbol across several timeframes",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	RunE: runReport,
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "YAML config file")
	RootCmd.PersistentFlags().String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR), overrides LOG_LEVEL")
	RootCmd.PersistentFlags().String("symbol", "", "trading pair, e.g. BTCUSDT; overrides SYMBOL")
	RootCmd.PersistentFlags().Bool("no-color", false, "disable coloured output")

	addRunFlags(RootCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads the configuration, applies the persistent flags and creates the logger.
func bootstrap(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevelRaw = level
		cfg.LogLevel = logger.ParseLevel(level)
	}
	if symbol, _ := cmd.Flags().GetString("symbol"); symbol != "" {
		cfg.Symbol = strings.ToUpper(strings.TrimSpace(symbol))
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		cfg.NoColor = true
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Debug(cmd.Context(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})
	return cfg, appLogger, nil
}

func newMarketDataSource(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*binanceclient.Client, error) {
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:               cfg.APIKey,
		SecretKey:            cfg.SecretKey,
		UseTestnet:           cfg.IsTestnet,
		Logger:               appLogger,
		RequestRate:          cfg.RequestRate,
		MaxRetries:           cfg.MaxRetries,
		RetryInitialInterval: cfg.RetryInitialInterval,
		RequestTimeout:       cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Binance client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("binance is not reachable: %w", err)
	}
	appLogger.Info(ctx, "Binance client initialized")
	return client, nil
}
