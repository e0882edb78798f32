// Package models provides domain models for the time-projection engine.
package models

import (
	"fmt"
	"strconv"
	"time"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// PivotKind represents the type of a detected price pivot.
type PivotKind string

const (
	PivotHigh      PivotKind = "HIGH"
	PivotLow       PivotKind = "LOW"
	PivotMajorHigh PivotKind = "MAJOR_HIGH"
	PivotMajorLow  PivotKind = "MAJOR_LOW"
)

// IsHigh returns true for high-type pivots.
func (k PivotKind) IsHigh() bool {
	return k == PivotHigh || k == PivotMajorHigh
}

// IsMajor returns true for major-cycle pivots.
func (k PivotKind) IsMajor() bool {
	return k == PivotMajorHigh || k == PivotMajorLow
}

// PricePivot is a local price extremum detected over a bounded window.
// Date is the calendar date of the source candle; Strength is in [0, 1].
type PricePivot struct {
	Date     time.Time
	Price    float64
	Kind     PivotKind
	Strength float64
}

// Bias represents the expected price behavior around a projected date.
type Bias string

const (
	BiasSupport    Bias = "SUPPORT"
	BiasResistance Bias = "RESISTANCE"
)

// TimeProjection is a future (or historical) date derived from a pivot through
// either a ratio or a fixed-period offset. Exactly one of Ratio and Period is
// set. ExactOffset retains the unrounded day offset so that consumers can
// label the projection without re-deriving it from the rounded date.
type TimeProjection struct {
	Date        time.Time
	Ratio       float64 // 0 for period-based projections
	Period      int     // 0 for ratio-based projections
	ExactOffset float64
	Source      *PricePivot
	Intensity   float64
	Bias        Bias
}

// Factor returns the typed signal factor this projection contributes to a
// confluence window.
func (p TimeProjection) Factor() SignalFactor {
	if p.Period > 0 {
		return SignalFactor{Kind: FactorGann, Period: p.Period}
	}
	return SignalFactor{Kind: FactorFibonacci, Ratio: p.Ratio}
}

// FactorKind identifies the family of a confluence signal factor.
type FactorKind string

const (
	FactorFibonacci FactorKind = "FIBONACCI"
	FactorGann      FactorKind = "GANN"
	FactorLunar     FactorKind = "LUNAR"
	FactorSolar     FactorKind = "SOLAR"
)

// SignalFactor is a typed confluence contributor. The payload field used
// depends on Kind: Ratio for FIBONACCI, Period for GANN, Event for LUNAR.
type SignalFactor struct {
	Kind   FactorKind
	Ratio  float64
	Period int
	Event  LunarKind
}

// Label renders the canonical identifier for a factor, e.g. "FIB_0.618",
// "90D_ANNIVERSARY", "LUNAR_FULL_MOON", "SOLAR_STORM".
func (f SignalFactor) Label() string {
	switch f.Kind {
	case FactorFibonacci:
		return "FIB_" + strconv.FormatFloat(f.Ratio, 'f', -1, 64)
	case FactorGann:
		return fmt.Sprintf("%dD_ANNIVERSARY", f.Period)
	case FactorLunar:
		return "LUNAR_" + string(f.Event)
	case FactorSolar:
		return "SOLAR_STORM"
	}
	return string(f.Kind)
}

// VortexWindow is a calendar date where at least two distinct signal factors
// coincide. Factors is ordered by label; Intensity is in [0, 1].
type VortexWindow struct {
	Date      time.Time
	Factors   []SignalFactor
	Intensity float64
}

// FactorLabels returns the ordered factor identifiers.
func (w VortexWindow) FactorLabels() []string {
	labels := make([]string, len(w.Factors))
	for i, f := range w.Factors {
		labels[i] = f.Label()
	}
	return labels
}

// BacktestStat holds the return distribution for one ratio or period bucket.
// Percentages are in percent units (2.5 means +2.5%).
type BacktestStat struct {
	SampleSize    int
	AverageChange float64
	MaxChange     float64
	MinChange     float64
	StdDevChange  float64
	SuccessRate   float64
}

// RatioPerformance maps each ratio to its backtest statistics. Ratios with no
// samples are absent, never zero-filled.
type RatioPerformance map[float64]BacktestStat

// GannPerformance maps each anniversary period (days) to its backtest
// statistics. Periods below the minimum sample count are absent.
type GannPerformance map[int]BacktestStat

// HorizonStat aggregates forward returns over one fixed horizon after a
// confluence window date.
type HorizonStat struct {
	Horizon       int
	SampleSize    int
	AverageChange float64
	SuccessRate   float64
}

// WindowOutcome pairs a historical confluence window with its realized
// forward return.
type WindowOutcome struct {
	Window VortexWindow
	Return float64
}

// ConfluenceReport is the result of replaying historical confluence windows.
type ConfluenceReport struct {
	Horizons    map[int]HorizonStat
	Best        *WindowOutcome
	Worst       *WindowOutcome
	MaxDrawdown float64
	Sharpe      float64
}

// Direction represents the sign of the best move found by the hit tester.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionNone Direction = "NONE"
)

// HitResult records the outcome of testing one pivot/ratio (or pivot/period)
// projection against the price action around the projected date.
type HitResult struct {
	PivotDate          time.Time
	PivotPrice         float64
	PivotKind          PivotKind
	Ratio              float64 // 0 for period-based tests
	Period             int     // 0 for ratio-based tests
	ProjectedDate      time.Time
	ActualMoveDate     time.Time
	MovePercent        float64
	Direction          Direction
	IsHit              bool
	DaysFromProjection int
}

// SolarDay is a forecast day with elevated geomagnetic activity.
type SolarDay struct {
	Date time.Time
	Kp   float64
}

// LunarKind represents the type of a lunar event.
type LunarKind string

const (
	LunarNewMoon  LunarKind = "NEW_MOON"
	LunarFullMoon LunarKind = "FULL_MOON"
)

// LunarEvent is a dated new- or full-moon occurrence.
type LunarEvent struct {
	Date time.Time
	Kind LunarKind
}

// AnalysisResult is the combined forward-looking output for one symbol.
type AnalysisResult struct {
	Symbol           string
	Pivots           []PricePivot
	Projections      []TimeProjection
	Windows          []VortexWindow
	CompressionScore float64
	ConfidenceScore  float64
}
