package engine

import (
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// maxDateSlip is how many days a projected or pivot date may slide forward to
// land on the nearest traded candle before it is dropped.
const maxDateSlip = 3

// BacktestEngine replays a symbol's full candle history against the ratio and
// period catalogs and against historical confluence windows, producing
// per-family performance statistics.
//
// Every method is a pure function of its inputs; callers may run backtests
// for different symbols concurrently as long as the candle slices are not
// mutated.
type BacktestEngine struct {
	cfg Config
}

// NewBacktestEngine creates a new backtest engine.
func NewBacktestEngine(cfg Config) *BacktestEngine {
	return &BacktestEngine{cfg: cfg}
}

// BacktestRatios sweeps every candle index through every catalog ratio and
// buckets the forward percent change at the projected index. Symbols with
// fewer than the minimum candle count get an explicitly empty result, never
// partial statistics. Ratios whose bucket is empty are omitted.
func (b *BacktestEngine) BacktestRatios(candles []models.Candle) models.RatioPerformance {
	perf := make(models.RatioPerformance)
	if len(candles) < b.cfg.MinRatioCandles {
		return perf
	}

	buckets := make(map[float64][]float64, len(b.cfg.Ratios))
	for _, ratio := range b.cfg.Ratios {
		offset := roundDays(float64(b.cfg.BaseUnit) * ratio)
		for i := 0; i+offset < len(candles); i++ {
			change := percentChange(candles[i].Close, candles[i+offset].Close)
			buckets[ratio] = append(buckets[ratio], change)
		}
	}

	for ratio, changes := range buckets {
		if len(changes) == 0 {
			continue
		}
		perf[ratio] = computeStat(changes)
	}

	return perf
}

// BacktestPeriods records the forward return at each anniversary period from
// every major pivot. The major pivot set resolves in fallback order:
// configured anchors, then detector-derived pivots from the weekly resample,
// then the global extremes of the weekly series. Period buckets below the
// minimum sample count are excluded from output, not zero-filled.
func (b *BacktestEngine) BacktestPeriods(candles []models.Candle, anchors []models.PricePivot) models.GannPerformance {
	perf := make(models.GannPerformance)
	if len(candles) < b.cfg.MinPeriodCandles {
		return perf
	}

	pivots := b.majorPivotsFor(candles, anchors)
	if len(pivots) == 0 {
		return perf
	}

	buckets := make(map[int][]float64, len(b.cfg.Periods))
	for _, pivot := range pivots {
		idx := indexAtOrAfter(candles, pivot.Date, maxDateSlip)
		if idx < 0 {
			continue
		}
		for _, period := range b.cfg.Periods {
			if idx+period >= len(candles) {
				continue
			}
			change := percentChange(candles[idx].Close, candles[idx+period].Close)
			buckets[period] = append(buckets[period], change)
		}
	}

	for period, changes := range buckets {
		if len(changes) < b.cfg.MinPeriodSamples {
			continue
		}
		perf[period] = computeStat(changes)
	}

	return perf
}

// majorPivotsFor resolves the major pivot set for a period backtest.
func (b *BacktestEngine) majorPivotsFor(candles []models.Candle, anchors []models.PricePivot) []models.PricePivot {
	// Anchors outside the candle range can never produce a sample.
	var usable []models.PricePivot
	if len(candles) > 0 {
		first := dateOf(candles[0].Timestamp)
		last := dateOf(candles[len(candles)-1].Timestamp)
		for _, a := range anchors {
			if !a.Date.Before(first) && !a.Date.After(last) {
				usable = append(usable, a)
			}
		}
	}
	if len(usable) > 0 {
		return usable
	}

	weekly := ResampleWeekly(candles)
	detected := NewPivotDetector(b.cfg).Major(weekly)
	if len(detected) > 0 {
		return detected
	}

	return globalExtremes(weekly, b.cfg.MajorStrength)
}

// globalExtremes returns the single highest high and lowest low of a series
// as major pivots. Last-resort fallback when detection yields nothing.
func globalExtremes(candles []models.Candle, strength float64) []models.PricePivot {
	if len(candles) == 0 {
		return nil
	}

	hiIdx, loIdx := 0, 0
	for i, c := range candles {
		if c.High > candles[hiIdx].High {
			hiIdx = i
		}
		if c.Low < candles[loIdx].Low {
			loIdx = i
		}
	}

	return []models.PricePivot{
		{Date: dateOf(candles[hiIdx].Timestamp), Price: candles[hiIdx].High, Kind: models.PivotMajorHigh, Strength: strength},
		{Date: dateOf(candles[loIdx].Timestamp), Price: candles[loIdx].Low, Kind: models.PivotMajorLow, Strength: strength},
	}
}

// BacktestConfluence replays each historical vortex window against fixed
// forward horizons. Windows dated beyond the end of the data are skipped.
// Risk metrics (max drawdown, Sharpe) are computed over the configured risk
// horizon's return sequence in window-date order.
func (b *BacktestEngine) BacktestConfluence(candles []models.Candle, windows []models.VortexWindow) *models.ConfluenceReport {
	report := &models.ConfluenceReport{Horizons: make(map[int]models.HorizonStat)}
	if len(candles) < b.cfg.MinConfluenceCandles {
		return report
	}

	buckets := make(map[int][]float64, len(b.cfg.Horizons))
	var riskReturns []float64

	for i := range windows {
		idx := indexAtOrAfter(candles, windows[i].Date, maxDateSlip)
		if idx < 0 {
			continue
		}

		for _, horizon := range b.cfg.Horizons {
			if idx+horizon >= len(candles) {
				continue
			}
			change := percentChange(candles[idx].Close, candles[idx+horizon].Close)
			buckets[horizon] = append(buckets[horizon], change)

			if horizon == b.cfg.RiskHorizon {
				riskReturns = append(riskReturns, change)
				outcome := &models.WindowOutcome{Window: windows[i], Return: change}
				if report.Best == nil || change > report.Best.Return {
					report.Best = outcome
				}
				if report.Worst == nil || change < report.Worst.Return {
					report.Worst = outcome
				}
			}
		}
	}

	for horizon, changes := range buckets {
		if len(changes) == 0 {
			continue
		}
		positive := 0
		for _, c := range changes {
			if c > 0 {
				positive++
			}
		}
		report.Horizons[horizon] = models.HorizonStat{
			Horizon:       horizon,
			SampleSize:    len(changes),
			AverageChange: mean(changes),
			SuccessRate:   float64(positive) / float64(len(changes)) * 100,
		}
	}

	report.MaxDrawdown = MaxDrawdown(riskReturns)
	report.Sharpe = SharpeRatio(riskReturns)

	return report
}

// computeStat reduces a non-empty change bucket to its statistics. Standard
// deviation is the population form, not sample-corrected.
func computeStat(changes []float64) models.BacktestStat {
	stat := models.BacktestStat{
		SampleSize: len(changes),
		MaxChange:  changes[0],
		MinChange:  changes[0],
	}

	positive := 0
	for _, c := range changes {
		if c > stat.MaxChange {
			stat.MaxChange = c
		}
		if c < stat.MinChange {
			stat.MinChange = c
		}
		if c > 0 {
			positive++
		}
	}

	stat.AverageChange = mean(changes)
	stat.StdDevChange = stdDev(changes)
	stat.SuccessRate = float64(positive) / float64(len(changes)) * 100

	return stat
}

// MaxDrawdown compounds a notional 100 balance through the ordered percent
// return sequence and reports the largest peak-to-current percentage decline.
// Always non-negative; zero when every return is non-negative.
func MaxDrawdown(returns []float64) float64 {
	balance := 100.0
	peak := balance
	var maxDD float64

	for _, r := range returns {
		balance *= 1 + r/100
		if balance > peak {
			peak = balance
		}
		if peak > 0 {
			dd := (peak - balance) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// SharpeRatio is the simple mean-over-stddev form, 0 when the deviation
// vanishes.
func SharpeRatio(returns []float64) float64 {
	sd := stdDev(returns)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd
}
