// Package engine implements the signal generation and backtesting engine:
// pivot detection over OHLC history, ratio/period date projection, confluence
// window detection, and the backtest and hit-testing routines that score each
// signal family against historical price action.
package engine

import (
	"fmt"
	"math"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// FibonacciRatios is the canonical Fibonacci retracement/extension set.
var FibonacciRatios = []float64{0.382, 0.500, 0.618, 0.786, 1.000, 1.272, 1.618, 2.618}

// HarmonicRatios is the harmonic/geometric ratio set.
var HarmonicRatios = []float64{0.333, 0.667, 1.333, 1.500, 1.667, 2.000, 2.333, 2.500, 2.667, 3.000}

// GannPeriods is the fixed anniversary day-count catalog.
var GannPeriods = []int{30, 45, 60, 90, 120, 135, 144, 180, 225, 270, 315, 360, 540, 720}

// Horizons are the fixed forward horizons (days) for the confluence backtest.
var Horizons = []int{1, 3, 7, 14, 30}

// Config holds all engine tunables. A single parameterized engine replaces
// the historical per-variant copies: catalogs, window sizes, and sample
// thresholds are injected here rather than hardcoded per call site.
type Config struct {
	// BaseUnit is the day count multiplied by each ratio when projecting.
	BaseUnit int
	Ratios   []float64
	Periods  []int

	// Pivot detection.
	RecentWindow   int
	MajorWindow    int
	RecentPivotCap int
	RecentStrength float64
	MajorStrength  float64

	// Backtest gating.
	MinRatioCandles      int
	MinPeriodCandles     int
	MinConfluenceCandles int
	MinPeriodSamples     int

	// Confluence scoring.
	ConfluenceWeight float64
	Horizons         []int
	RiskHorizon      int

	// Hit testing.
	HitLookbackDays int

	// Anchors are per-symbol hardcoded major pivots, tried before
	// detector-derived fallbacks in the period backtest.
	Anchors map[string][]models.PricePivot
}

// DefaultConfig returns the canonical engine configuration.
func DefaultConfig() Config {
	ratios := make([]float64, 0, len(FibonacciRatios)+len(HarmonicRatios))
	ratios = append(ratios, FibonacciRatios...)
	ratios = append(ratios, HarmonicRatios...)

	return Config{
		BaseUnit:             100,
		Ratios:               ratios,
		Periods:              append([]int(nil), GannPeriods...),
		RecentWindow:         2,
		MajorWindow:          26,
		RecentPivotCap:       8,
		RecentStrength:       0.7,
		MajorStrength:        0.95,
		MinRatioCandles:      100,
		MinPeriodCandles:     400,
		MinConfluenceCandles: 100,
		MinPeriodSamples:     5,
		ConfluenceWeight:     0.3,
		Horizons:             append([]int(nil), Horizons...),
		RiskHorizon:          7,
		HitLookbackDays:      730,
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c Config) Validate() error {
	if c.BaseUnit <= 0 {
		return fmt.Errorf("base unit must be positive, got %d", c.BaseUnit)
	}
	if len(c.Ratios) == 0 {
		return fmt.Errorf("ratio catalog is empty")
	}
	if len(c.Periods) == 0 {
		return fmt.Errorf("period catalog is empty")
	}
	if c.RecentWindow < 1 {
		return fmt.Errorf("recent window must be at least 1, got %d", c.RecentWindow)
	}
	if c.MajorWindow <= c.RecentWindow {
		return fmt.Errorf("major window (%d) must exceed recent window (%d)", c.MajorWindow, c.RecentWindow)
	}
	if c.ConfluenceWeight <= 0 || c.ConfluenceWeight > 1 {
		return fmt.Errorf("confluence weight must be in (0, 1], got %v", c.ConfluenceWeight)
	}
	if c.MinPeriodSamples < 1 {
		return fmt.Errorf("minimum period samples must be at least 1, got %d", c.MinPeriodSamples)
	}
	return nil
}

// Ratio-family base weights. The golden ratios carry the highest weight,
// the half retracement next, the remaining Fibonacci levels a moderate
// weight, and harmonic/geometric ratios a lower default.
const (
	weightGolden   = 1.0
	weightHalf     = 0.9
	weightFib      = 0.8
	weightHarmonic = 0.6

	// gannBaseIntensity is the base weight for anniversary projections.
	gannBaseIntensity = 0.7
)

// BaseIntensityForRatio returns the base projection weight for a ratio.
// Comparison uses a small epsilon so that computed ratios match catalog
// constants.
func BaseIntensityForRatio(ratio float64) float64 {
	switch {
	case ratioEq(ratio, 0.618), ratioEq(ratio, 1.618):
		return weightGolden
	case ratioEq(ratio, 0.500):
		return weightHalf
	}
	for _, r := range FibonacciRatios {
		if ratioEq(ratio, r) {
			return weightFib
		}
	}
	return weightHarmonic
}

func ratioEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
