package engine

import (
	"sort"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// PivotDetector scans candle sequences for local price extrema. Two tiers are
// supported: fine-grained "recent" pivots over the primary series and
// "major-cycle" pivots over a coarser (weekly) series with a wider window.
type PivotDetector struct {
	cfg Config
}

// NewPivotDetector creates a new pivot detector.
func NewPivotDetector(cfg Config) *PivotDetector {
	return &PivotDetector{cfg: cfg}
}

// Recent detects fine-grained pivots and returns the most recent ones first,
// capped to the configured limit. Only a small set seeds near-term
// projections, so older pivots are dropped.
func (d *PivotDetector) Recent(candles []models.Candle) []models.PricePivot {
	pivots := d.AllRecent(candles)
	if d.cfg.RecentPivotCap > 0 && len(pivots) > d.cfg.RecentPivotCap {
		pivots = pivots[:d.cfg.RecentPivotCap]
	}
	return pivots
}

// AllRecent detects fine-grained pivots without the recency cap. Backtest
// consumers need the full historical pivot set.
func (d *PivotDetector) AllRecent(candles []models.Candle) []models.PricePivot {
	return d.detect(candles, d.cfg.RecentWindow, false)
}

// Major detects major-cycle pivots over a coarse (weekly) candle series.
// Major pivots seed long-horizon projections and are never capped.
func (d *PivotDetector) Major(weekly []models.Candle) []models.PricePivot {
	return d.detect(weekly, d.cfg.MajorWindow, true)
}

// detect runs the windowed strict-extrema search. Index i is a high pivot iff
// its high strictly exceeds every other high in [i-w, i+w]; symmetric for
// lows. If both conditions hold (possible on flat data with a large window),
// the side with the larger margin over the window average wins.
func (d *PivotDetector) detect(candles []models.Candle, w int, major bool) []models.PricePivot {
	if len(candles) < 2*w+1 {
		return nil
	}

	var pivots []models.PricePivot
	for i := w; i < len(candles)-w; i++ {
		isHigh, isLow := true, true
		for j := i - w; j <= i+w; j++ {
			if j == i {
				continue
			}
			if candles[j].High >= candles[i].High {
				isHigh = false
			}
			if candles[j].Low <= candles[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if !isHigh && !isLow {
			continue
		}

		if isHigh && isLow {
			// Tie-break by margin over the window average.
			highMargin := candles[i].High - windowMean(candles, i, w, func(c models.Candle) float64 { return c.High })
			lowMargin := windowMean(candles, i, w, func(c models.Candle) float64 { return c.Low }) - candles[i].Low
			if highMargin >= lowMargin {
				isLow = false
			} else {
				isHigh = false
			}
		}

		pivot := models.PricePivot{Date: dateOf(candles[i].Timestamp)}
		if isHigh {
			pivot.Price = candles[i].High
			if major {
				pivot.Kind = models.PivotMajorHigh
			} else {
				pivot.Kind = models.PivotHigh
			}
		} else {
			pivot.Price = candles[i].Low
			if major {
				pivot.Kind = models.PivotMajorLow
			} else {
				pivot.Kind = models.PivotLow
			}
		}
		if major {
			pivot.Strength = d.cfg.MajorStrength
		} else {
			pivot.Strength = d.cfg.RecentStrength
		}
		pivots = append(pivots, pivot)
	}

	// Most recent first.
	sort.Slice(pivots, func(i, j int) bool {
		return pivots[i].Date.After(pivots[j].Date)
	})

	return pivots
}

// windowMean averages extract(candle) over [i-w, i+w] excluding i itself.
func windowMean(candles []models.Candle, i, w int, extract func(models.Candle) float64) float64 {
	var total float64
	var n int
	for j := i - w; j <= i+w; j++ {
		if j == i {
			continue
		}
		total += extract(candles[j])
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
