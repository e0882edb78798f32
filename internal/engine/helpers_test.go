package engine

import (
	"time"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// makeDaily builds an ordered daily candle series from a price function.
// High/low straddle the price by one unit so pivot shape follows the prices.
func makeDaily(n int, price func(i int) float64) []models.Candle {
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		p := price(i)
		candles[i] = models.Candle{
			Timestamp: testStart.AddDate(0, 0, i),
			Open:      p,
			High:      p + 1,
			Low:       p - 1,
			Close:     p,
			Volume:    1000,
		}
	}
	return candles
}

// flatAt returns a price function that is flat except for explicit overrides.
func flatAt(base float64, overrides map[int]float64) func(i int) float64 {
	return func(i int) float64 {
		if v, ok := overrides[i]; ok {
			return v
		}
		return base
	}
}

// rampPeak rises to a single peak at mid and falls back down, guaranteeing
// exactly one strict high pivot.
func rampPeak(n int) func(i int) float64 {
	mid := n / 2
	return func(i int) float64 {
		if i <= mid {
			return 100 + float64(i)
		}
		return 100 + float64(2*mid-i)
	}
}
