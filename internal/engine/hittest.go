package engine

import (
	"math"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// HitTester checks whether price actually moved around historically projected
// dates. A "hit" is a move of at least the margin threshold within the
// tolerance window, regardless of direction.
type HitTester struct {
	cfg Config
}

// NewHitTester creates a new hit tester.
func NewHitTester(cfg Config) *HitTester {
	return &HitTester{cfg: cfg}
}

// TestRatioHits tests every pivot x ratio projection against the candle
// history. marginPercent is the absolute move that counts as a hit;
// toleranceDays is the scan radius around the projected index.
func (t *HitTester) TestRatioHits(candles []models.Candle, pivots []models.PricePivot, marginPercent float64, toleranceDays int) []models.HitResult {
	var results []models.HitResult
	for i := range pivots {
		for _, ratio := range t.cfg.Ratios {
			offset := roundDays(float64(t.cfg.BaseUnit) * ratio)
			if r, ok := t.test(candles, &pivots[i], offset, marginPercent, toleranceDays); ok {
				r.Ratio = ratio
				results = append(results, r)
			}
		}
	}
	return results
}

// TestPeriodHits tests every pivot x anniversary period against the candle
// history.
func (t *HitTester) TestPeriodHits(candles []models.Candle, pivots []models.PricePivot, marginPercent float64, toleranceDays int) []models.HitResult {
	var results []models.HitResult
	for i := range pivots {
		for _, period := range t.cfg.Periods {
			if r, ok := t.test(candles, &pivots[i], period, marginPercent, toleranceDays); ok {
				r.Period = period
				results = append(results, r)
			}
		}
	}
	return results
}

// test evaluates one pivot/offset pair. It returns false when the projection
// is unverifiable (outside the data, too recent to have an outcome, or older
// than the lookback horizon) or when the best move stays under the inclusion
// floor of half the margin. Sub-floor moves are noise, not results.
func (t *HitTester) test(candles []models.Candle, pivot *models.PricePivot, offsetDays int, marginPercent float64, toleranceDays int) (models.HitResult, bool) {
	if len(candles) == 0 {
		return models.HitResult{}, false
	}

	pivotIdx := indexAtOrAfter(candles, pivot.Date, maxDateSlip)
	if pivotIdx < 0 {
		return models.HitResult{}, false
	}

	projIdx := pivotIdx + offsetDays
	if projIdx < 0 || projIdx >= len(candles) {
		return models.HitResult{}, false
	}

	asOf := dateOf(candles[len(candles)-1].Timestamp)
	projDate := pivot.Date.AddDate(0, 0, offsetDays)
	if projDate.After(asOf.AddDate(0, 0, -toleranceDays)) {
		// Too close to now: the tolerance window has not fully played out.
		return models.HitResult{}, false
	}
	if projDate.Before(asOf.AddDate(0, 0, -t.cfg.HitLookbackDays)) {
		return models.HitResult{}, false
	}

	base := candles[projIdx].Close
	bestMove := 0.0
	bestOffset := 0
	bestIdx := projIdx

	for off := -toleranceDays; off <= toleranceDays; off++ {
		idx := projIdx + off
		if idx < 0 || idx >= len(candles) || idx == projIdx {
			continue
		}
		move := percentChange(base, candles[idx].Close)
		if math.Abs(move) > math.Abs(bestMove) {
			bestMove = move
			bestOffset = off
			bestIdx = idx
		}
	}

	if math.Abs(bestMove) < marginPercent/2 {
		return models.HitResult{}, false
	}

	direction := models.DirectionNone
	if bestMove > 0 {
		direction = models.DirectionUp
	} else if bestMove < 0 {
		direction = models.DirectionDown
	}

	return models.HitResult{
		PivotDate:          pivot.Date,
		PivotPrice:         pivot.Price,
		PivotKind:          pivot.Kind,
		ProjectedDate:      projDate,
		ActualMoveDate:     dateOf(candles[bestIdx].Timestamp),
		MovePercent:        bestMove,
		Direction:          direction,
		IsHit:              math.Abs(bestMove) >= marginPercent,
		DaysFromProjection: bestOffset,
	}, true
}
