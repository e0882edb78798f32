package engine

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// returnsGen generates a slice of percent returns in a realistic range.
func returnsGen(maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, gen.Float64Range(-50.0, 50.0))
}

func TestProperty_ProjectionDateArithmetic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	projGen := NewProjectionGenerator(DefaultConfig())

	properties.Property("every projection date is its pivot date plus the rounded offset", prop.ForAll(
		func(dayOffset int, strength float64) bool {
			pivot := models.PricePivot{
				Date:     testStart.AddDate(0, 0, dayOffset),
				Price:    100,
				Kind:     models.PivotLow,
				Strength: strength,
			}
			projections := projGen.Project([]models.PricePivot{pivot})

			for _, p := range projections {
				var wantDays int
				if p.Period > 0 {
					wantDays = p.Period
				} else {
					wantDays = roundDays(float64(DefaultConfig().BaseUnit) * p.Ratio)
					if p.ExactOffset != float64(DefaultConfig().BaseUnit)*p.Ratio {
						return false
					}
				}
				if !p.Date.Equal(pivot.Date.AddDate(0, 0, wantDays)) {
					return false
				}
				if p.Intensity < 0 || p.Intensity > 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(-2000, 2000),
		gen.Float64Range(0.0, 1.0),
	))

	properties.TestingRun(t)
}

func TestProperty_StatBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("computed statistics stay within their bounds", prop.ForAll(
		func(changes []float64) bool {
			if len(changes) == 0 {
				return true
			}
			stat := computeStat(changes)

			if stat.SampleSize != len(changes) {
				return false
			}
			if stat.SuccessRate < 0 || stat.SuccessRate > 100 {
				return false
			}
			if stat.StdDevChange < 0 {
				return false
			}
			if stat.AverageChange < stat.MinChange || stat.AverageChange > stat.MaxChange {
				return false
			}

			positives := 0
			for _, c := range changes {
				if c > 0 {
					positives++
				}
			}
			want := float64(positives) / float64(len(changes)) * 100
			return math.Abs(stat.SuccessRate-want) < 1e-9
		},
		returnsGen(200),
	))

	properties.TestingRun(t)
}

func TestProperty_DrawdownNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("max drawdown is never negative", prop.ForAll(
		func(returns []float64) bool {
			return MaxDrawdown(returns) >= 0
		},
		returnsGen(200),
	))

	properties.Property("non-negative return sequences have zero drawdown", prop.ForAll(
		func(returns []float64) bool {
			for i := range returns {
				returns[i] = math.Abs(returns[i])
			}
			return MaxDrawdown(returns) == 0
		},
		returnsGen(200),
	))

	properties.TestingRun(t)
}

func TestProperty_VortexWindowInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	cfg := DefaultConfig()
	detector := NewConfluenceDetector(cfg)

	catalog := append(append([]float64(nil), FibonacciRatios...), HarmonicRatios...)

	properties.Property("every emitted window has at least two distinct factors and bounded intensity", prop.ForAll(
		func(ratioIdxs []int, dayOffsets []int) bool {
			n := len(ratioIdxs)
			if len(dayOffsets) < n {
				n = len(dayOffsets)
			}

			var projections []models.TimeProjection
			for i := 0; i < n; i++ {
				projections = append(projections, models.TimeProjection{
					Date:  testStart.AddDate(0, 0, dayOffsets[i]%5),
					Ratio: catalog[ratioIdxs[i]%len(catalog)],
				})
			}

			windows := detector.Detect(projections, nil, nil)
			for _, w := range windows {
				if len(w.Factors) < 2 {
					return false
				}
				if w.Intensity <= 0 || w.Intensity > 1 {
					return false
				}
				labels := w.FactorLabels()
				for i := 1; i < len(labels); i++ {
					if labels[i] == labels[i-1] {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOfN(30, gen.IntRange(0, 1000)),
		gen.SliceOfN(30, gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}

func TestProperty_RoundingSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("day rounding is symmetric about zero", prop.ForAll(
		func(x float64) bool {
			return roundDays(-x) == -roundDays(x)
		},
		gen.Float64Range(0, 5000),
	))

	properties.TestingRun(t)
}
