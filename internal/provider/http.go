package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/errors"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/resilience"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/pkg/utils"
)

const klinePageLimit = 1000

// ExchangeClient fetches daily candles from a Binance-compatible klines REST
// endpoint. History longer than one page is fetched in successive pages keyed
// by start time.
type ExchangeClient struct {
	baseURL   string
	timeframe string
	client    *http.Client
	retry     utils.RetryConfig
	breaker   *resilience.CircuitBreaker
	logger    zerolog.Logger
}

// NewExchangeClient creates a new exchange client.
func NewExchangeClient(baseURL, timeframe string, logger zerolog.Logger) *ExchangeClient {
	retry := utils.DefaultRetryConfig()
	retry.Permanent = []error{apperrors.ErrSymbolNotFound}

	return &ExchangeClient{
		baseURL:   baseURL,
		timeframe: timeframe,
		client:    &http.Client{Timeout: 30 * time.Second},
		retry:     retry,
		breaker:   resilience.NewCircuitBreaker("exchange", resilience.DefaultCircuitBreakerConfig()),
		logger:    logger.With().Str("component", "exchange").Logger(),
	}
}

// Candles fetches up to days of daily history for symbol, oldest first.
func (c *ExchangeClient) Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	start := time.Now().UTC().AddDate(0, 0, -days)

	var candles []models.Candle
	for {
		page, err := resilience.ExecuteWithResult(c.breaker, func() ([]models.Candle, error) {
			return utils.RetryWithResult(ctx, c.retry, func() ([]models.Candle, error) {
				return c.fetchPage(ctx, symbol, start)
			})
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		candles = append(candles, page...)
		if len(page) < klinePageLimit {
			break
		}
		start = page[len(page)-1].Timestamp.AddDate(0, 0, 1)
	}

	c.logger.Debug().Str("symbol", symbol).Int("candles", len(candles)).Msg("fetched history")
	return candles, nil
}

func (c *ExchangeClient) fetchPage(ctx context.Context, symbol string, start time.Time) ([]models.Candle, error) {
	endpoint := fmt.Sprintf("%s/api/v3/klines", c.baseURL)

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", c.timeframe)
	q.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(klinePageLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewProviderError("exchange", endpoint, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError("exchange", endpoint, apperrors.Wrap(apperrors.ErrConnectionFailed, err.Error()))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.NewProviderError("exchange", endpoint, apperrors.ErrRateLimited)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewDataError("candles", symbol, "unknown symbol", apperrors.ErrSymbolNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.NewProviderError("exchange", endpoint,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, apperrors.NewProviderError("exchange", endpoint, err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKline(row)
		if err != nil {
			return nil, apperrors.NewDataError("candles", symbol, "malformed kline", err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline decodes one kline row. The exchange encodes the open time as a
// millisecond integer and every price field as a quoted decimal string.
func parseKline(row []json.RawMessage) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("kline row has %d fields", len(row))
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return models.Candle{}, fmt.Errorf("open time: %w", err)
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		fields[i] = v
	}

	return models.Candle{
		Timestamp: time.UnixMilli(openTime).UTC(),
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}
