package ports

import (
	"context"
	"time"

	"cryptoPulse/internal/domain"
)

// MarketDataSource defines read-only access to an exchange's public market data.
type MarketDataSource interface {
	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error

	// GetTickerPrice retrieves the last traded price for a given symbol.
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)

	// GetKlines retrieves the most recent klines for the given symbol, oldest first.
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error)

	// GetKlinesRange retrieves all klines between start and end, oldest first.
	GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error)
}
