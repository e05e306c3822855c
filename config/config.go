package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"cryptoPulse/internal/adapters/logger"
	"cryptoPulse/internal/domain"
	"cryptoPulse/internal/indicators"
	"cryptoPulse/internal/ports"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (public market data works without keys)
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"api_secret"`
	IsTestnet bool   `yaml:"testnet"`

	// Report
	Symbol            string             `yaml:"symbol"`
	Timeframes        []domain.Timeframe `yaml:"timeframes"`
	FibonacciInterval string             `yaml:"fibonacci_interval"` // timeframe whose Fibonacci table is printed
	RefreshInterval   time.Duration      `yaml:"refresh_interval"`
	NoColor           bool               `yaml:"no_color"`

	// Requests
	RequestRate          float64       `yaml:"request_rate"` // requests per second
	MaxRetries           uint64        `yaml:"max_retries"`
	RetryInitialInterval time.Duration `yaml:"retry_initial_interval"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`

	// Observability
	LogLevel    logger.LogLevel `yaml:"-"`
	LogLevelRaw string          `yaml:"log_level"`
	MetricsAddr string          `yaml:"metrics_addr"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Timeframes:           domain.DefaultTimeframes(),
		FibonacciInterval:    "1d",
		RefreshInterval:      15 * time.Minute,
		RequestRate:          10,
		MaxRetries:           5,
		RetryInitialInterval: 500 * time.Millisecond,
		RequestTimeout:       10 * time.Second,
		LogLevelRaw:          "INFO",
	}
}

// LoadConfig builds the configuration from, in increasing priority: defaults, the optional
// YAML file at path, the .env file and the process environment.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file '%s': %w", path, err)
		}
	}

	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	var errs error

	cfg.APIKey = getEnv("BINANCE_API_KEY", cfg.APIKey)
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", cfg.SecretKey)
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", cfg.IsTestnet)
	cfg.Symbol = strings.ToUpper(strings.TrimSpace(getEnv("SYMBOL", cfg.Symbol)))
	cfg.FibonacciInterval = getEnv("FIBONACCI_INTERVAL", cfg.FibonacciInterval)
	cfg.NoColor = getEnvAsBool("NO_COLOR", cfg.NoColor)
	cfg.MetricsAddr = getEnv("METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevelRaw = getEnv("LOG_LEVEL", cfg.LogLevelRaw)
	cfg.LogLevel = logger.ParseLevel(cfg.LogLevelRaw)

	refreshInterval, err := getEnvAsDurationRequired("REFRESH_INTERVAL", cfg.RefreshInterval)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else {
		cfg.RefreshInterval = refreshInterval
	}
	requestRate, err := getEnvAsFloatRequired("REQUEST_RATE", cfg.RequestRate)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else {
		cfg.RequestRate = requestRate
	}
	maxRetries, err := getEnvAsIntRequired("MAX_RETRIES", int(cfg.MaxRetries))
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if maxRetries < 0 {
		errs = multierr.Append(errs, errors.New("MAX_RETRIES cannot be negative"))
	} else {
		cfg.MaxRetries = uint64(maxRetries)
	}
	timeoutSeconds, err := getEnvAsIntRequired("REQUEST_TIMEOUT_SECONDS", int(cfg.RequestTimeout/time.Second))
	if err != nil {
		errs = multierr.Append(errs, err)
	} else {
		cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second
	}

	errs = multierr.Append(errs, cfg.Validate())
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrConfigurationError, errs)
	}
	return cfg, nil
}

// Validate checks the values that cannot be fixed at runtime.
// The symbol may be empty here; the CLI prompts for it.
func (c *Config) Validate() error {
	var errs error

	if len(c.Timeframes) == 0 {
		errs = multierr.Append(errs, errors.New("at least one timeframe must be configured"))
	}
	seen := make(map[string]bool, len(c.Timeframes))
	for _, tf := range c.Timeframes {
		switch {
		case tf.Interval == "":
			errs = multierr.Append(errs, errors.New("timeframe interval must be set"))
		case seen[tf.Interval]:
			errs = multierr.Append(errs, fmt.Errorf("duplicate timeframe interval %s", tf.Interval))
		}
		seen[tf.Interval] = true
		if tf.Limit < indicators.MinDataPoints {
			errs = multierr.Append(errs, fmt.Errorf("timeframe %s limit %d is below the minimum of %d klines",
				tf.Interval, tf.Limit, indicators.MinDataPoints))
		}
		if tf.Limit > 1000 {
			errs = multierr.Append(errs, fmt.Errorf("timeframe %s limit %d exceeds the Binance maximum of 1000", tf.Interval, tf.Limit))
		}
	}
	if c.FibonacciInterval != "" && len(c.Timeframes) > 0 && !seen[c.FibonacciInterval] {
		errs = multierr.Append(errs, fmt.Errorf("FIBONACCI_INTERVAL %s is not one of the configured timeframes", c.FibonacciInterval))
	}
	if c.RefreshInterval <= 0 {
		errs = multierr.Append(errs, errors.New("REFRESH_INTERVAL must be positive"))
	}
	if c.RequestRate <= 0 {
		errs = multierr.Append(errs, errors.New("REQUEST_RATE must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = multierr.Append(errs, errors.New("REQUEST_TIMEOUT_SECONDS must be positive"))
	}
	return errs
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsDurationRequired(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
