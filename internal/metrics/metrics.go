package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptoPulse/internal/indicators"
	"cryptoPulse/internal/ports"
)

var CycleDurationMetrics = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "cryptopulse_cycle_duration_seconds",
		Help:    "duration of one report cycle",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

var CycleFailuresMetrics = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "cryptopulse_cycle_failures_total",
		Help: "report cycles that ended with an error",
	})

var FetchFailuresMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cryptopulse_fetch_failures_total",
		Help: "failed market data requests per kline interval",
	}, []string{"interval"})

var LastPriceMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "cryptopulse_last_price",
		Help: "last traded price seen by the report cycle",
	}, []string{"symbol"})

var IndicatorValueMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "cryptopulse_indicator_value",
		Help: "latest indicator values per symbol and interval",
	}, []string{"symbol", "interval", "indicator"})

func init() {
	prometheus.MustRegister(
		CycleDurationMetrics,
		CycleFailuresMetrics,
		FetchFailuresMetrics,
		LastPriceMetrics,
		IndicatorValueMetrics,
	)
}

// ObserveIndicators publishes the scalar indicators of one set.
func ObserveIndicators(symbol, interval string, set *indicators.Set) {
	if set == nil {
		return
	}
	for name, v := range map[string]float64{
		"sma":             set.SMA,
		"rsi":             set.RSI,
		"ema":             set.EMA,
		"bollinger_upper": set.BollingerUpper,
		"bollinger_lower": set.BollingerLower,
		"adx":             set.ADX,
		"stochastic":      set.Stochastic,
		"cci":             set.CCI,
		"support":         set.Support,
		"resistance":      set.Resistance,
	} {
		IndicatorValueMetrics.WithLabelValues(symbol, interval, name).Set(v)
	}
}

// Server exposes the default registry on /metrics.
type Server struct {
	logger ports.Logger
	srv    *http.Server
}

// NewServer creates a metrics server listening on addr.
func NewServer(addr string, logger ports.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		logger: logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Serve blocks until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Metrics server listening", map[string]interface{}{"addr": s.srv.Addr})
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
