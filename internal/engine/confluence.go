package engine

import (
	"sort"
	"time"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// ConfluenceDetector groups projections and exogenous signals by exact
// calendar date and emits a vortex window wherever at least two distinct
// factors coincide.
type ConfluenceDetector struct {
	cfg Config
}

// NewConfluenceDetector creates a new confluence detector.
func NewConfluenceDetector(cfg Config) *ConfluenceDetector {
	return &ConfluenceDetector{cfg: cfg}
}

// Detect groups all signals by calendar date. Solar and lunar inputs are
// optional; nil slices simply contribute no factors. Duplicate factors on the
// same date (two pivots projecting the same ratio onto one day) count once:
// a window requires two independent signal sources, not two copies of one.
// Windows are returned in date order; adjacent dates are never merged.
func (d *ConfluenceDetector) Detect(projections []models.TimeProjection, solar []models.SolarDay, lunar []models.LunarEvent) []models.VortexWindow {
	byDate := make(map[time.Time]map[string]models.SignalFactor)

	add := func(date time.Time, f models.SignalFactor) {
		date = dateOf(date)
		factors, ok := byDate[date]
		if !ok {
			factors = make(map[string]models.SignalFactor)
			byDate[date] = factors
		}
		factors[f.Label()] = f
	}

	for _, p := range projections {
		add(p.Date, p.Factor())
	}
	for _, s := range solar {
		add(s.Date, models.SignalFactor{Kind: models.FactorSolar})
	}
	for _, l := range lunar {
		add(l.Date, models.SignalFactor{Kind: models.FactorLunar, Event: l.Kind})
	}

	var windows []models.VortexWindow
	for date, factors := range byDate {
		if len(factors) < 2 {
			continue
		}

		labels := make([]string, 0, len(factors))
		for label := range factors {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		ordered := make([]models.SignalFactor, len(labels))
		for i, label := range labels {
			ordered[i] = factors[label]
		}

		windows = append(windows, models.VortexWindow{
			Date:      date,
			Factors:   ordered,
			Intensity: windowIntensity(len(ordered), d.cfg.ConfluenceWeight),
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Date.Before(windows[j].Date)
	})

	return windows
}

// windowIntensity maps a factor count to [0, 1], monotonically increasing in
// the count.
func windowIntensity(count int, weight float64) float64 {
	return clamp01(float64(count) * weight)
}
