package provider

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// CandleStore is the persistence surface the cache writes through to.
type CandleStore interface {
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error)
	GetLastSync(dataType string) time.Time
	SetLastSync(dataType string, t time.Time) error
}

// CandleCache is a read-through cache over a CandleProvider. Fresh data is
// served from the store; stale or missing data triggers a fetch and a
// write-back. When the upstream fetch fails but stale data exists, the stale
// data is served so that analysis degrades instead of failing.
type CandleCache struct {
	upstream  CandleProvider
	store     CandleStore
	timeframe string
	ttl       time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// NewCandleCache creates a new candle cache.
func NewCandleCache(upstream CandleProvider, store CandleStore, timeframe string, ttl time.Duration, logger zerolog.Logger) *CandleCache {
	return &CandleCache{
		upstream:  upstream,
		store:     store,
		timeframe: timeframe,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger.With().Str("component", "cache").Logger(),
	}
}

// Candles returns up to days of history for symbol, oldest first.
func (c *CandleCache) Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	now := c.now().UTC()
	from := now.AddDate(0, 0, -days)
	syncKey := syncKeyFor(symbol, c.timeframe)

	lastSync := c.store.GetLastSync(syncKey)
	if !lastSync.IsZero() && now.Sub(lastSync) < c.ttl {
		cached, err := c.store.GetCandles(ctx, symbol, c.timeframe, from, now)
		if err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	fetched, err := c.upstream.Candles(ctx, symbol, days)
	if err != nil {
		stale, staleErr := c.store.GetCandles(ctx, symbol, c.timeframe, from, now)
		if staleErr == nil && len(stale) > 0 {
			c.logger.Warn().Err(err).Str("symbol", symbol).Msg("fetch failed, serving stale cache")
			return stale, nil
		}
		return nil, err
	}

	if err := c.store.SaveCandles(ctx, symbol, c.timeframe, fetched); err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("cache write-back failed")
	} else if err := c.store.SetLastSync(syncKey, now); err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("sync marker update failed")
	}

	return fetched, nil
}

// Freshness returns the last successful sync time for symbol, zero if never
// synced.
func (c *CandleCache) Freshness(symbol string) time.Time {
	return c.store.GetLastSync(syncKeyFor(symbol, c.timeframe))
}

func syncKeyFor(symbol, timeframe string) string {
	return "candles:" + symbol + ":" + timeframe
}
