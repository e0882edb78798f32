// Package provider fetches the external inputs of an analysis: daily candles
// from an exchange, geomagnetic storm forecasts, and lunar event calendars.
package provider

import (
	"context"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// CandleProvider fetches daily OHLCV history for a symbol.
type CandleProvider interface {
	Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error)
}

// SolarProvider fetches forecast days with elevated geomagnetic activity.
type SolarProvider interface {
	StormDays(ctx context.Context) ([]models.SolarDay, error)
}

// LunarProvider loads the new/full moon calendar.
type LunarProvider interface {
	Events(ctx context.Context) ([]models.LunarEvent, error)
}
