package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"cryptoPulse/config"
	"cryptoPulse/internal/indicators"
	"cryptoPulse/internal/metrics"
	"cryptoPulse/internal/ports"
	"cryptoPulse/internal/report"
)

// Renderer outputs a finished report.
type Renderer interface {
	Render(w io.Writer, r *report.Report) error
	RenderJSON(w io.Writer, r *report.Report) error
}

// ReportService fetches market data for every configured timeframe, computes the
// indicators and renders the resulting report, once or on a schedule.
type ReportService struct {
	cfg      *config.Config
	logger   ports.Logger
	source   ports.MarketDataSource
	renderer Renderer
	out      io.Writer
	asJSON   bool
}

// Option customizes a ReportService.
type Option func(*ReportService)

// WithOutput sets the writer reports are rendered to. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *ReportService) { s.out = w }
}

// WithJSON renders reports as JSON instead of tables.
func WithJSON(enabled bool) Option {
	return func(s *ReportService) { s.asJSON = enabled }
}

// NewReportService creates a new application service instance.
func NewReportService(
	cfg *config.Config,
	logger ports.Logger,
	source ports.MarketDataSource,
	renderer Renderer,
	opts ...Option,
) (*ReportService, error) {
	if cfg == nil || logger == nil || source == nil || renderer == nil {
		return nil, fmt.Errorf("missing required dependencies for ReportService")
	}
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ports.ErrConfigurationError)
	}
	if len(cfg.Timeframes) == 0 {
		return nil, fmt.Errorf("%w: at least one timeframe is required", ports.ErrConfigurationError)
	}

	s := &ReportService{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		renderer: renderer,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start runs one report cycle immediately and then one per refresh interval until ctx
// is canceled or SIGINT/SIGTERM is received. A failed cycle is logged and the schedule
// continues.
func (s *ReportService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Report Service...", map[string]interface{}{
		"symbol":          s.cfg.Symbol,
		"refreshInterval": s.cfg.RefreshInterval.String(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	schedule := "@every " + s.cfg.RefreshInterval.String()
	if _, err := scheduler.AddFunc(schedule, func() { s.runScheduled(ctx) }); err != nil {
		return fmt.Errorf("%w: schedule '%s': %w", ports.ErrConfigurationError, schedule, err)
	}

	s.runScheduled(ctx)
	scheduler.Start()

	<-ctx.Done()
	s.logger.Info(ctx, "Main context cancelled, initiating shutdown...")

	// Wait for a running cycle to observe the cancellation.
	select {
	case <-scheduler.Stop().Done():
	case <-time.After(5 * time.Second):
		s.logger.Warn(ctx, "Timeout waiting for running report cycle to finish")
	}

	s.logger.Info(ctx, "Report Service stopped.")
	return nil
}

func (s *ReportService) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunCycle(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error(ctx, err, "Report cycle failed, retrying on next tick", map[string]interface{}{"symbol": s.cfg.Symbol})
	}
}

// RunCycle fetches the current price and every timeframe, computes the indicators and
// renders the report. Any fetch, compute or render error aborts the cycle.
func (s *ReportService) RunCycle(ctx context.Context) (*report.Report, error) {
	start := time.Now()
	rep, err := s.cycle(ctx)
	metrics.CycleDurationMetrics.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CycleFailuresMetrics.Inc()
		return nil, err
	}

	s.logger.Debug(ctx, "Report cycle finished", map[string]interface{}{
		"symbol":      rep.Symbol,
		"price":       rep.Price,
		"conclusions": len(rep.Conclusions),
		"duration":    time.Since(start).String(),
	})
	return rep, nil
}

func (s *ReportService) cycle(ctx context.Context) (*report.Report, error) {
	symbol := s.cfg.Symbol

	price, err := s.source.GetTickerPrice(ctx, symbol)
	if err != nil {
		metrics.FetchFailuresMetrics.WithLabelValues("ticker").Inc()
		return nil, fmt.Errorf("get current price for %s: %w", symbol, err)
	}
	metrics.LastPriceMetrics.WithLabelValues(symbol).Set(price)

	frames, err := s.computeFrames(ctx, symbol)
	if err != nil {
		return nil, err
	}

	rep := report.Build(symbol, price, frames, s.cfg.FibonacciInterval)
	if err := s.render(rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// computeFrames fetches and computes all timeframes concurrently. Frames keep the
// configured order.
func (s *ReportService) computeFrames(ctx context.Context, symbol string) ([]report.Frame, error) {
	frames := make([]report.Frame, len(s.cfg.Timeframes))
	g, gctx := errgroup.WithContext(ctx)

	for i, tf := range s.cfg.Timeframes {
		i, tf := i, tf
		g.Go(func() error {
			klines, err := s.source.GetKlines(gctx, symbol, tf.Interval, tf.Limit)
			if err != nil {
				metrics.FetchFailuresMetrics.WithLabelValues(tf.Interval).Inc()
				return fmt.Errorf("get %s klines for %s: %w", tf.Interval, symbol, err)
			}

			set, err := indicators.ComputeKlines(klines)
			if err != nil {
				return fmt.Errorf("compute %s indicators for %s: %w", tf.Interval, symbol, err)
			}
			metrics.ObserveIndicators(symbol, tf.Interval, set)

			frames[i] = report.Frame{Timeframe: tf, Indicators: set}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

func (s *ReportService) render(rep *report.Report) error {
	var err error
	if s.asJSON {
		err = s.renderer.RenderJSON(s.out, rep)
	} else {
		err = s.renderer.Render(s.out, rep)
	}
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
