package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoPulse/config"
	"cryptoPulse/internal/domain"
	"cryptoPulse/internal/ports"
	"cryptoPulse/internal/report"
)

// Mock implementations
type mockLogger struct {
	mu        sync.Mutex
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

func (m *mockLogger) errorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errorMsgs)
}

type mockSource struct {
	mu         sync.Mutex
	price      float64
	priceErrs  []error // consumed one per GetTickerPrice call
	klineErrs  map[string]error
	klineCount map[string]int // overrides the requested limit
	requests   []string
}

func newMockSource() *mockSource {
	return &mockSource{price: 65000, klineErrs: map[string]error{}, klineCount: map[string]int{}}
}

func (m *mockSource) Ping(ctx context.Context) error { return nil }

func (m *mockSource) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.priceErrs) > 0 {
		err := m.priceErrs[0]
		m.priceErrs = m.priceErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	return m.price, nil
}

func (m *mockSource) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	m.mu.Lock()
	m.requests = append(m.requests, interval)
	err := m.klineErrs[interval]
	if n, ok := m.klineCount[interval]; ok {
		limit = n
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return makeKlines(symbol, interval, limit), nil
}

func (m *mockSource) GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	return nil, fmt.Errorf("not used")
}

func makeKlines(symbol, interval string, n int) []*domain.Kline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	klines := make([]*domain.Kline, n)
	for i := range klines {
		c := 100 + float64(i%7) - float64(i%3)
		klines[i] = &domain.Kline{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Symbol:   symbol,
			Interval: interval,
			Open:     c - 0.5,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			IsFinal:  true,
		}
	}
	return klines
}

type mockRenderer struct {
	mu         sync.Mutex
	rendered   []*report.Report
	jsonCalls  int
	err        error
	onRendered func()
}

func (m *mockRenderer) record(r *report.Report) error {
	m.mu.Lock()
	m.rendered = append(m.rendered, r)
	cb := m.onRendered
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
	return m.err
}

func (m *mockRenderer) Render(w io.Writer, r *report.Report) error {
	return m.record(r)
}

func (m *mockRenderer) RenderJSON(w io.Writer, r *report.Report) error {
	m.mu.Lock()
	m.jsonCalls++
	m.mu.Unlock()
	return m.record(r)
}

func (m *mockRenderer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rendered)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Symbol = "BTCUSDT"
	cfg.RefreshInterval = time.Second
	return cfg
}

func TestNewReportService(t *testing.T) {
	cfg := testConfig()
	logger := &mockLogger{}
	source := newMockSource()
	renderer := &mockRenderer{}

	_, err := NewReportService(nil, logger, source, renderer)
	assert.Error(t, err)
	_, err = NewReportService(cfg, nil, source, renderer)
	assert.Error(t, err)
	_, err = NewReportService(cfg, logger, nil, renderer)
	assert.Error(t, err)
	_, err = NewReportService(cfg, logger, source, nil)
	assert.Error(t, err)

	noSymbol := testConfig()
	noSymbol.Symbol = ""
	_, err = NewReportService(noSymbol, logger, source, renderer)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	svc, err := NewReportService(cfg, logger, source, renderer)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestReportService_RunCycle(t *testing.T) {
	source := newMockSource()
	renderer := &mockRenderer{}
	svc, err := NewReportService(testConfig(), &mockLogger{}, source, renderer)
	require.NoError(t, err)

	rep, err := svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", rep.Symbol)
	assert.Equal(t, 65000.0, rep.Price)
	assert.Equal(t, "1d", rep.FibonacciInterval)
	require.Len(t, rep.Frames, 4)
	for i, want := range []string{"15m", "1h", "4h", "1d"} {
		assert.Equal(t, want, rep.Frames[i].Timeframe.Interval)
		require.NotNil(t, rep.Frames[i].Indicators)
		assert.Len(t, rep.Frames[i].Indicators.Fibonacci, 7)
	}
	assert.ElementsMatch(t, []string{"15m", "1h", "4h", "1d"}, source.requests)

	require.Equal(t, 1, renderer.count())
	assert.Same(t, rep, renderer.rendered[0])
	assert.Zero(t, renderer.jsonCalls)
}

func TestReportService_RunCycle_JSON(t *testing.T) {
	renderer := &mockRenderer{}
	svc, err := NewReportService(testConfig(), &mockLogger{}, newMockSource(), renderer, WithJSON(true))
	require.NoError(t, err)

	_, err = svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.jsonCalls)
}

func TestReportService_RunCycle_RealRenderer(t *testing.T) {
	var out bytes.Buffer
	svc, err := NewReportService(testConfig(), &mockLogger{}, newMockSource(), report.NewRenderer(true), WithOutput(&out))
	require.NoError(t, err)

	_, err = svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "BTCUSDT current price: $65000.00")
	assert.Contains(t, out.String(), "Fibonacci levels (1 day):")
}

func TestReportService_RunCycle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *mockSource, r *mockRenderer)
		wantErr error
		wantMsg string
	}{
		{
			name:    "ticker price fails",
			setup:   func(s *mockSource, r *mockRenderer) { s.priceErrs = []error{ports.ErrExchangeUnavailable} },
			wantErr: ports.ErrExchangeUnavailable,
			wantMsg: "get current price",
		},
		{
			name:    "one timeframe fails",
			setup:   func(s *mockSource, r *mockRenderer) { s.klineErrs["4h"] = ports.ErrRateLimited },
			wantErr: ports.ErrRateLimited,
			wantMsg: "get 4h klines",
		},
		{
			name:    "too few klines",
			setup:   func(s *mockSource, r *mockRenderer) { s.klineCount["1d"] = 10 },
			wantErr: ports.ErrInvalidInput,
			wantMsg: "compute 1d indicators",
		},
		{
			name:    "render fails",
			setup:   func(s *mockSource, r *mockRenderer) { r.err = fmt.Errorf("broken pipe") },
			wantMsg: "render report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newMockSource()
			renderer := &mockRenderer{}
			tt.setup(source, renderer)

			svc, err := NewReportService(testConfig(), &mockLogger{}, source, renderer)
			require.NoError(t, err)

			rep, err := svc.RunCycle(context.Background())
			require.Error(t, err)
			assert.Nil(t, rep)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestReportService_Start_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer := &mockRenderer{onRendered: cancel}
	logger := &mockLogger{}
	svc, err := NewReportService(testConfig(), logger, newMockSource(), renderer)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
	assert.Equal(t, 1, renderer.count())
	assert.Contains(t, logger.infoMsgs, "Report Service stopped.")
}

func TestReportService_Start_ContinuesAfterFailedCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := newMockSource()
	source.priceErrs = []error{ports.ErrConnectionFailed}
	renderer := &mockRenderer{onRendered: cancel}
	logger := &mockLogger{}

	svc, err := NewReportService(testConfig(), logger, source, renderer)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled cycle did not run after the failed one")
	}
	assert.Equal(t, 1, logger.errorCount())
	assert.Equal(t, 1, renderer.count())
}
