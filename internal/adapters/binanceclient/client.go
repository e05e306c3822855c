package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"cryptoPulse/internal/domain"
	"cryptoPulse/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://api.binance.com"
	baseURLTestnet    = "https://testnet.binance.vision"

	// maxKlinesLimit is the largest page the spot klines endpoint serves.
	maxKlinesLimit = 1000
)

// Client implements ports.MarketDataSource on the Binance spot REST API.
type Client struct {
	spotClient           *binance.Client
	logger               ports.Logger
	limiter              *rate.Limiter
	maxRetries           uint64
	retryInitialInterval time.Duration
	requestTimeout       time.Duration
	now                  func() time.Time
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey               string
	SecretKey            string
	UseTestnet           bool
	BaseURL              string // overrides the production/testnet URL when set
	Logger               ports.Logger
	RequestRate          float64       // requests per second; defaults to 10
	MaxRetries           uint64        // retries after the first attempt
	RetryInitialInterval time.Duration // first backoff delay; defaults to 500ms
	RequestTimeout       time.Duration // per attempt; defaults to 10s
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	client := binance.NewClient(cfg.APIKey, cfg.SecretKey)
	switch {
	case cfg.BaseURL != "":
		client.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL, "testnet": cfg.UseTestnet})

	requestRate := cfg.RequestRate
	if requestRate <= 0 {
		requestRate = 10
	}
	initialInterval := cfg.RetryInitialInterval
	if initialInterval <= 0 {
		initialInterval = 500 * time.Millisecond
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		spotClient:           client,
		logger:               cfg.Logger,
		limiter:              rate.NewLimiter(rate.Limit(requestRate), 1),
		maxRetries:           cfg.MaxRetries,
		retryInitialInterval: initialInterval,
		requestTimeout:       timeout,
		now:                  time.Now,
	}, nil
}

// call runs one API request under the rate limiter, retrying transient failures with
// exponential backoff. The returned error is already translated by handleError.
func (c *Client) call(ctx context.Context, op string, fields map[string]interface{}, fn func(ctx context.Context) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()

		err := fn(reqCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.retryInitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, c.maxRetries), ctx)

	notify := func(err error, delay time.Duration) {
		c.logger.Warn(ctx, op+": request failed, retrying", mergeFields(fields, map[string]interface{}{
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   err.Error(),
		}))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return c.handleError(ctx, err, op, fields)
	}
	return nil
}

// isRetryable reports whether a failed request may succeed when repeated.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 0, -1000, -1001, -1003, -1007, -1008: // server side, disconnected, rate limit, timeout, overloaded
			return true
		default:
			return false
		}
	}
	var parseErr *malformedError
	return !errors.As(err, &parseErr)
}

// handleError translates Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string, fields map[string]interface{}) error {
	if err == nil {
		return nil
	}

	logFields := mergeFields(fields, map[string]interface{}{"operation": operation})

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		logFields["apiErrorCode"] = apiErr.Code
		logFields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003, -1015: // Too many requests / orders
			mappedErr = ports.ErrRateLimited
		case -1007, -1021: // Backend timeout / timestamp outside recvWindow
			mappedErr = ports.ErrTimeout
		case 0, -1000, -1001, -1008: // Non-JSON error body / unknown / disconnected / server busy
			mappedErr = ports.ErrExchangeUnavailable
		case -1121: // Invalid symbol
			mappedErr = ports.ErrInvalidSymbol
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1112, -1114, -1115, -1116, -1117, -1120, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -1022, -2014, -2015: // Signature / API-key format / permissions
			mappedErr = ports.ErrAuthenticationFailed
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, operation+" failed with API error", logFields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	var finalErr error
	var parseErr *malformedError
	switch {
	case errors.As(err, &parseErr):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrMalformedResponse, err)
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"),
		strings.Contains(err.Error(), "no such host"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, operation+" failed", logFields)
	return finalErr
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	err := c.call(ctx, op, nil, func(ctx context.Context) error {
		return c.spotClient.NewPingService().Do(ctx)
	})
	if err != nil {
		return err
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// GetTickerPrice retrieves the last traded price for a given symbol.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	op := "GetTickerPrice"
	fields := map[string]interface{}{"symbol": symbol}

	var price float64
	err := c.call(ctx, op, fields, func(ctx context.Context) error {
		prices, err := c.spotClient.NewListPricesService().Symbol(symbol).Do(ctx)
		if err != nil {
			return err
		}
		for _, p := range prices {
			if p.Symbol != symbol {
				continue
			}
			price, err = parseFloat("price", p.Price)
			return err
		}
		return &malformedError{msg: fmt.Sprintf("no price returned for symbol %s", symbol)}
	})
	if err != nil {
		return 0, err
	}
	return price, nil
}

// GetKlines retrieves the most recent klines for the given symbol, oldest first.
// The last kline of the response is usually still open and is marked IsFinal=false.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	op := "GetKlines"
	fields := map[string]interface{}{"symbol": symbol, "interval": interval, "limit": limit}

	var klines []*domain.Kline
	err := c.call(ctx, op, fields, func(ctx context.Context) error {
		binanceKlines, err := c.spotClient.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
		if err != nil {
			return err
		}
		klines, err = c.translateKlines(binanceKlines, symbol, interval)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug(ctx, op+" successful", mergeFields(fields, map[string]interface{}{"count": len(klines)}))
	return klines, nil
}

// GetKlinesRange fetches all klines for a symbol/interval between start and end time.
func (c *Client) GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	op := "GetKlinesRange"
	var allKlines []*domain.Kline
	from := start

	for from.Before(end) {
		fields := map[string]interface{}{"symbol": symbol, "interval": interval, "from": from.Format(time.RFC3339)}

		var page []*binance.Kline
		err := c.call(ctx, op, fields, func(ctx context.Context) error {
			var err error
			page, err = c.spotClient.NewKlinesService().
				Symbol(symbol).
				Interval(interval).
				StartTime(from.UnixMilli()).
				EndTime(end.UnixMilli()).
				Limit(maxKlinesLimit).
				Do(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		klines, err := c.translateKlines(page, symbol, interval)
		if err != nil {
			return nil, c.handleError(ctx, err, op, fields)
		}
		allKlines = append(allKlines, klines...)

		last := page[len(page)-1]
		from = time.UnixMilli(last.CloseTime + 1)
		if len(page) < maxKlinesLimit {
			break
		}
	}

	c.logger.Info(ctx, op+" finished", map[string]interface{}{"symbol": symbol, "interval": interval, "count": len(allKlines)})
	return allKlines, nil
}

// --- Translation Helpers ---

// malformedError marks a response that could not be translated; it is never retried.
type malformedError struct {
	msg string
	err error
}

func (e *malformedError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *malformedError) Unwrap() error { return e.err }

func parseFloat(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &malformedError{msg: fmt.Sprintf("parsing %s '%s'", field, value), err: err}
	}
	return f, nil
}

func (c *Client) translateKlines(binanceKlines []*binance.Kline, symbol, interval string) ([]*domain.Kline, error) {
	now := c.now()
	klines := make([]*domain.Kline, 0, len(binanceKlines))
	for _, bk := range binanceKlines {
		dk, err := translateBinanceKline(bk, symbol, interval, now)
		if err != nil {
			return nil, err
		}
		klines = append(klines, dk)
	}
	return klines, nil
}

func translateBinanceKline(bk *binance.Kline, symbol, interval string, now time.Time) (*domain.Kline, error) {
	if bk == nil {
		return nil, &malformedError{msg: "received nil kline"}
	}
	open, err := parseFloat("open price", bk.Open)
	if err != nil {
		return nil, err
	}
	high, err := parseFloat("high price", bk.High)
	if err != nil {
		return nil, err
	}
	low, err := parseFloat("low price", bk.Low)
	if err != nil {
		return nil, err
	}
	cls, err := parseFloat("close price", bk.Close)
	if err != nil {
		return nil, err
	}
	vol, err := parseFloat("volume", bk.Volume)
	if err != nil {
		return nil, err
	}

	closeTime := time.UnixMilli(bk.CloseTime)
	return &domain.Kline{
		OpenTime:  time.UnixMilli(bk.OpenTime),
		CloseTime: closeTime,
		Symbol:    symbol,   // not part of the kline payload
		Interval:  interval, // not part of the kline payload
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
		IsFinal:   closeTime.Before(now),
	}, nil
}

func mergeFields(base, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
