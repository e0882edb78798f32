package provider

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/errors"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/pkg/utils"
)

// SolarClient fetches the NOAA 3-day geomagnetic forecast and reduces it to
// the days whose peak planetary Kp index reaches the storm threshold.
type SolarClient struct {
	url       string
	threshold float64
	client    *http.Client
	retry     utils.RetryConfig
	logger    zerolog.Logger
}

// NewSolarClient creates a new solar forecast client.
func NewSolarClient(url string, threshold float64, logger zerolog.Logger) *SolarClient {
	return &SolarClient{
		url:       url,
		threshold: threshold,
		client:    &http.Client{Timeout: 15 * time.Second},
		retry:     utils.DefaultRetryConfig(),
		logger:    logger.With().Str("component", "solar").Logger(),
	}
}

// StormDays fetches and parses the forecast. An empty or dateless body yields
// zero days, not an error: solar data is an optional signal source.
func (c *SolarClient) StormDays(ctx context.Context) ([]models.SolarDay, error) {
	if c.url == "" {
		return nil, nil
	}

	body, err := utils.RetryWithResult(ctx, c.retry, func() (string, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}

	days := ParseKpForecast(body, c.threshold)
	c.logger.Debug().Int("storm_days", len(days)).Float64("threshold", c.threshold).Msg("parsed solar forecast")
	return days, nil
}

func (c *SolarClient) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", apperrors.NewProviderError("solar", c.url, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.NewProviderError("solar", c.url, apperrors.Wrap(apperrors.ErrConnectionFailed, err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewProviderError("solar", c.url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewProviderError("solar", c.url, err)
	}
	return string(body), nil
}

// ParseKpForecast extracts storm days from the plain-text "NOAA Kp index
// breakdown" block. The block names a year, then a header row of "Mon DD"
// columns, then one row per 3-hour interval with a Kp value per column. A day
// qualifies when its maximum interval value is at or above threshold.
func ParseKpForecast(body string, threshold float64) []models.SolarDay {
	year := 0
	var dates []time.Time
	var peaks []float64

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "NOAA Kp index breakdown") {
			fields := strings.Fields(line)
			if y, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
				year = y
			}
			continue
		}

		if year > 0 && dates == nil {
			if d := parseDateHeader(line, year); d != nil {
				dates = d
				peaks = make([]float64, len(d))
			}
			continue
		}

		if dates != nil && strings.Contains(line, "UT") {
			values := parseKpRow(line)
			for i := 0; i < len(values) && i < len(peaks); i++ {
				if values[i] > peaks[i] {
					peaks[i] = values[i]
				}
			}
		}
	}

	var days []models.SolarDay
	for i, date := range dates {
		if peaks[i] >= threshold {
			days = append(days, models.SolarDay{Date: date, Kp: peaks[i]})
		}
	}
	return days
}

// parseDateHeader parses a row of "Mon DD" pairs, e.g. "Aug 25 Aug 26 Aug 27".
// Columns that straddle a year boundary inherit the trailing year, so earlier
// December columns step back one year.
func parseDateHeader(line string, year int) []time.Time {
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields)%2 != 0 {
		return nil
	}

	dates := make([]time.Time, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		month, err := time.Parse("Jan", fields[i])
		if err != nil {
			return nil
		}
		day, err := strconv.Atoi(fields[i+1])
		if err != nil || day < 1 || day > 31 {
			return nil
		}
		dates = append(dates, time.Date(year, month.Month(), day, 0, 0, 0, 0, time.UTC))
	}

	for i := len(dates) - 2; i >= 0; i-- {
		if dates[i].After(dates[i+1]) {
			dates[i] = dates[i].AddDate(-1, 0, 0)
		}
	}
	return dates
}

// parseKpRow parses "00-03UT 3.33 4.00 5.67 (G2)" into the numeric columns,
// ignoring storm-scale annotations.
func parseKpRow(line string) []float64 {
	fields := strings.Fields(line)
	var values []float64
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "(") {
			continue
		}
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			values = append(values, v)
		}
	}
	return values
}
