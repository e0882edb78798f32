package engine

import (
	"sort"
	"time"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// ProjectionGenerator maps pivots through the ratio and period catalogs to
// produce dated time projections.
type ProjectionGenerator struct {
	cfg Config
}

// NewProjectionGenerator creates a new projection generator.
func NewProjectionGenerator(cfg Config) *ProjectionGenerator {
	return &ProjectionGenerator{cfg: cfg}
}

// Project generates every projection for the given pivots, past and future.
// Backtest consumers replay the full historical set; use Upcoming for
// forward-looking output. Output is ordered by date, then ratio, then period,
// so repeated runs over the same pivot set are identical.
func (g *ProjectionGenerator) Project(pivots []models.PricePivot) []models.TimeProjection {
	projections := make([]models.TimeProjection, 0, len(pivots)*(len(g.cfg.Ratios)+len(g.cfg.Periods)))

	for i := range pivots {
		pivot := &pivots[i]
		bias := biasFor(pivot.Kind)

		for _, ratio := range g.cfg.Ratios {
			// The exact offset is retained alongside the rounded date:
			// 0.786*100 = 78.6 rounds to 79, and labeling must come from
			// the ratio, never from re-deriving it off the rounded date.
			exact := float64(g.cfg.BaseUnit) * ratio
			projections = append(projections, models.TimeProjection{
				Date:        pivot.Date.AddDate(0, 0, roundDays(exact)),
				Ratio:       ratio,
				ExactOffset: exact,
				Source:      pivot,
				Intensity:   clamp01(BaseIntensityForRatio(ratio) * pivot.Strength),
				Bias:        bias,
			})
		}

		for _, period := range g.cfg.Periods {
			projections = append(projections, models.TimeProjection{
				Date:        pivot.Date.AddDate(0, 0, period),
				Period:      period,
				ExactOffset: float64(period),
				Source:      pivot,
				Intensity:   clamp01(gannBaseIntensity * pivot.Strength),
				Bias:        bias,
			})
		}
	}

	sort.Slice(projections, func(i, j int) bool {
		a, b := projections[i], projections[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Ratio != b.Ratio {
			return a.Ratio < b.Ratio
		}
		return a.Period < b.Period
	})

	return projections
}

// Upcoming generates only projections dated on or after asOf's calendar date.
func (g *ProjectionGenerator) Upcoming(pivots []models.PricePivot, asOf time.Time) []models.TimeProjection {
	today := dateOf(asOf)
	all := g.Project(pivots)

	upcoming := all[:0:0]
	for _, p := range all {
		if !p.Date.Before(today) {
			upcoming = append(upcoming, p)
		}
	}
	return upcoming
}

// biasFor derives the projection bias from the source pivot kind: dates
// projected from lows lean support, from highs resistance.
func biasFor(kind models.PivotKind) models.Bias {
	if kind.IsHigh() {
		return models.BiasResistance
	}
	return models.BiasSupport
}
