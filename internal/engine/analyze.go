package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// Analyzer is the engine facade. It wires the detector, generator, confluence
// and backtest components under one configuration and exposes the call-level
// operations the CLI consumes.
//
// An Analyzer is stateless across calls: every method is a pure function of
// the candle slice and the fixed catalogs, so one instance may serve
// concurrent calls for different symbols.
type Analyzer struct {
	cfg        Config
	pivots     *PivotDetector
	generator  *ProjectionGenerator
	confluence *ConfluenceDetector
	backtest   *BacktestEngine
	hits       *HitTester
	logger     zerolog.Logger
}

// NewAnalyzer creates a new analyzer with the given configuration.
func NewAnalyzer(cfg Config, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		pivots:     NewPivotDetector(cfg),
		generator:  NewProjectionGenerator(cfg),
		confluence: NewConfluenceDetector(cfg),
		backtest:   NewBacktestEngine(cfg),
		hits:       NewHitTester(cfg),
		logger:     logger,
	}
}

// Analyze produces the forward-looking view for a symbol: current pivots,
// upcoming projections, upcoming vortex windows, and the two summary scores.
// Solar and lunar inputs are optional; a missing source contributes zero
// signals and never fails the analysis. With too little data the result is a
// well-defined empty object, not an error.
func (a *Analyzer) Analyze(symbol string, candles []models.Candle, solar []models.SolarDay, lunar []models.LunarEvent) *models.AnalysisResult {
	result := &models.AnalysisResult{Symbol: symbol}
	if len(candles) < 2*a.cfg.RecentWindow+1 {
		return result
	}

	asOf := candles[len(candles)-1].Timestamp

	recent := a.pivots.Recent(candles)
	major := a.pivots.Major(ResampleWeekly(candles))
	pivots := append(append([]models.PricePivot(nil), recent...), major...)

	projections := a.generator.Upcoming(pivots, asOf)
	windows := a.confluence.Detect(projections,
		filterSolar(solar, asOf), filterLunar(lunar, asOf))

	result.Pivots = pivots
	result.Projections = projections
	result.Windows = windows
	result.CompressionScore = compressionScore(projections, windows)
	result.ConfidenceScore = confidenceScore(pivots, windows)

	return result
}

// BacktestRatios scores every catalog ratio over the full history.
func (a *Analyzer) BacktestRatios(symbol string, candles []models.Candle) models.RatioPerformance {
	perf := a.backtest.BacktestRatios(candles)
	a.logger.Debug().Str("symbol", symbol).Int("ratios", len(perf)).Msg("ratio backtest done")
	return perf
}

// BacktestPeriods scores every anniversary period from the symbol's major
// pivots over the full history.
func (a *Analyzer) BacktestPeriods(symbol string, candles []models.Candle) models.GannPerformance {
	perf := a.backtest.BacktestPeriods(candles, a.cfg.Anchors[symbol])
	a.logger.Debug().Str("symbol", symbol).Int("periods", len(perf)).Msg("period backtest done")
	return perf
}

// BacktestConfluence rebuilds every historical vortex window from the full
// (uncapped, unfiltered) projection set and replays it against fixed forward
// horizons.
func (a *Analyzer) BacktestConfluence(symbol string, candles []models.Candle, solar []models.SolarDay, lunar []models.LunarEvent) *models.ConfluenceReport {
	windows := a.HistoricalWindows(candles, solar, lunar)
	report := a.backtest.BacktestConfluence(candles, windows)
	a.logger.Debug().Str("symbol", symbol).Int("windows", len(windows)).Msg("confluence backtest done")
	return report
}

// HistoricalWindows detects confluence over the complete projection history:
// all recent-tier pivots (no recency cap) plus major pivots, projected
// without the forward-only filter.
func (a *Analyzer) HistoricalWindows(candles []models.Candle, solar []models.SolarDay, lunar []models.LunarEvent) []models.VortexWindow {
	recent := a.pivots.AllRecent(candles)
	major := a.pivots.Major(ResampleWeekly(candles))
	pivots := append(append([]models.PricePivot(nil), recent...), major...)

	projections := a.generator.Project(pivots)
	return a.confluence.Detect(projections, solar, lunar)
}

// TestRatioHits runs the hit tester over every historical pivot x ratio pair.
func (a *Analyzer) TestRatioHits(candles []models.Candle, marginPercent float64, toleranceDays int) []models.HitResult {
	return a.hits.TestRatioHits(candles, a.allPivots(candles), marginPercent, toleranceDays)
}

// TestPeriodHits runs the hit tester over every historical pivot x period pair.
func (a *Analyzer) TestPeriodHits(candles []models.Candle, marginPercent float64, toleranceDays int) []models.HitResult {
	return a.hits.TestPeriodHits(candles, a.allPivots(candles), marginPercent, toleranceDays)
}

func (a *Analyzer) allPivots(candles []models.Candle) []models.PricePivot {
	recent := a.pivots.AllRecent(candles)
	major := a.pivots.Major(ResampleWeekly(candles))
	return append(append([]models.PricePivot(nil), recent...), major...)
}

// compressionScore measures how much of the forward projection set collapses
// into confluence windows: the fraction of projections whose date falls on an
// emitted window.
func compressionScore(projections []models.TimeProjection, windows []models.VortexWindow) float64 {
	if len(projections) == 0 {
		return 0
	}

	windowDates := make(map[time.Time]struct{}, len(windows))
	for _, w := range windows {
		windowDates[w.Date] = struct{}{}
	}

	absorbed := 0
	for _, p := range projections {
		if _, ok := windowDates[dateOf(p.Date)]; ok {
			absorbed++
		}
	}

	return clamp01(float64(absorbed) / float64(len(projections)))
}

// confidenceScore blends mean window intensity with mean pivot strength.
// Zero when there are no windows: confluence is the only evidence this score
// reports on.
func confidenceScore(pivots []models.PricePivot, windows []models.VortexWindow) float64 {
	if len(windows) == 0 || len(pivots) == 0 {
		return 0
	}

	var intensity float64
	for _, w := range windows {
		intensity += w.Intensity
	}
	intensity /= float64(len(windows))

	var strength float64
	for _, p := range pivots {
		strength += p.Strength
	}
	strength /= float64(len(pivots))

	return clamp01(intensity * strength)
}

// filterSolar keeps only days on or after asOf's calendar date.
func filterSolar(days []models.SolarDay, asOf time.Time) []models.SolarDay {
	today := dateOf(asOf)
	var out []models.SolarDay
	for _, d := range days {
		if !dateOf(d.Date).Before(today) {
			out = append(out, d)
		}
	}
	return out
}

// filterLunar keeps only events on or after asOf's calendar date.
func filterLunar(events []models.LunarEvent, asOf time.Time) []models.LunarEvent {
	today := dateOf(asOf)
	var out []models.LunarEvent
	for _, e := range events {
		if !dateOf(e.Date).Before(today) {
			out = append(out, e)
		}
	}
	return out
}
