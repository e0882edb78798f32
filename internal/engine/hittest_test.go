package engine

import (
	"math"
	"testing"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

func hitTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Ratios = []float64{0.5} // single offset of 50 days
	cfg.Periods = []int{30}
	return cfg
}

func pivotAtStart() []models.PricePivot {
	return []models.PricePivot{
		{Date: testStart, Price: 100, Kind: models.PivotLow, Strength: 0.7},
	}
}

func TestRatioHitDetectsMove(t *testing.T) {
	tester := NewHitTester(hitTestConfig())

	// Flat closes except a 3% spike two days after the projected index 50.
	candles := makeDaily(80, flatAt(100, map[int]float64{52: 103}))
	results := tester.TestRatioHits(candles, pivotAtStart(), 2.0, 3)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.IsHit {
		t.Error("3%% move against a 2%% margin must be a hit")
	}
	if r.Direction != models.DirectionUp {
		t.Errorf("expected UP direction, got %s", r.Direction)
	}
	if math.Abs(r.MovePercent-3.0) > 1e-9 {
		t.Errorf("expected move 3.0%%, got %v", r.MovePercent)
	}
	if r.DaysFromProjection != 2 {
		t.Errorf("expected move 2 days after projection, got %d", r.DaysFromProjection)
	}
	if r.Ratio != 0.5 {
		t.Errorf("expected ratio 0.5 on result, got %v", r.Ratio)
	}
	if !r.ProjectedDate.Equal(testStart.AddDate(0, 0, 50)) {
		t.Errorf("unexpected projected date %v", r.ProjectedDate)
	}
	if !r.ActualMoveDate.Equal(testStart.AddDate(0, 0, 52)) {
		t.Errorf("unexpected actual move date %v", r.ActualMoveDate)
	}
}

func TestRatioHitIncludedMissAboveFloor(t *testing.T) {
	tester := NewHitTester(hitTestConfig())

	// A 1.2% move clears the half-margin floor of 1.0 but not the 2.0 margin.
	candles := makeDaily(80, flatAt(100, map[int]float64{48: 101.2}))
	results := tester.TestRatioHits(candles, pivotAtStart(), 2.0, 3)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.IsHit {
		t.Error("1.2%% move against a 2%% margin must not be a hit")
	}
	if math.Abs(r.MovePercent-1.2) > 1e-9 {
		t.Errorf("expected move 1.2%%, got %v", r.MovePercent)
	}
	if r.DaysFromProjection != -2 {
		t.Errorf("expected move 2 days before projection, got %d", r.DaysFromProjection)
	}
}

func TestRatioHitSubFloorMoveExcluded(t *testing.T) {
	tester := NewHitTester(hitTestConfig())

	// 0.5% is below half the margin: noise, not a result.
	candles := makeDaily(80, flatAt(100, map[int]float64{51: 100.5}))
	results := tester.TestRatioHits(candles, pivotAtStart(), 2.0, 3)

	if len(results) != 0 {
		t.Errorf("sub-floor moves must be excluded, got %d results", len(results))
	}
}

func TestRatioHitDownDirection(t *testing.T) {
	tester := NewHitTester(hitTestConfig())

	candles := makeDaily(80, flatAt(100, map[int]float64{53: 97}))
	results := tester.TestRatioHits(candles, pivotAtStart(), 2.0, 3)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Direction != models.DirectionDown {
		t.Errorf("expected DOWN direction, got %s", results[0].Direction)
	}
	if !results[0].IsHit {
		t.Error("a -3%% move must count as a hit")
	}
}

func TestRatioHitRecentProjectionUnverifiable(t *testing.T) {
	tester := NewHitTester(hitTestConfig())

	// Projection lands on day 50; with only 52 candles the 3-day tolerance
	// window has not fully played out yet.
	candles := makeDaily(52, flatAt(100, map[int]float64{51: 110}))
	results := tester.TestRatioHits(candles, pivotAtStart(), 2.0, 3)

	if len(results) != 0 {
		t.Errorf("projections too recent to verify must be skipped, got %d", len(results))
	}
}

func TestRatioHitBeyondLookbackExcluded(t *testing.T) {
	cfg := hitTestConfig()
	cfg.HitLookbackDays = 20
	tester := NewHitTester(cfg)

	// Projection on day 50 is 29 days before the last candle: past the
	// 20-day lookback horizon.
	candles := makeDaily(80, flatAt(100, map[int]float64{52: 110}))
	results := tester.TestRatioHits(candles, pivotAtStart(), 2.0, 3)

	if len(results) != 0 {
		t.Errorf("projections older than the lookback must be skipped, got %d", len(results))
	}
}

func TestRatioHitProjectionOutsideData(t *testing.T) {
	tester := NewHitTester(hitTestConfig())

	// Only 40 candles: the 50-day offset falls off the end of the series.
	candles := makeDaily(40, flatAt(100, nil))
	results := tester.TestRatioHits(candles, pivotAtStart(), 2.0, 3)

	if len(results) != 0 {
		t.Errorf("projections outside the data must be skipped, got %d", len(results))
	}
}

func TestPeriodHits(t *testing.T) {
	tester := NewHitTester(hitTestConfig())

	// Spike one day after the 30-day anniversary.
	candles := makeDaily(80, flatAt(100, map[int]float64{31: 104}))
	results := tester.TestPeriodHits(candles, pivotAtStart(), 2.0, 3)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Period != 30 {
		t.Errorf("expected period 30 on result, got %d", r.Period)
	}
	if !r.IsHit || r.Direction != models.DirectionUp {
		t.Errorf("expected an UP hit, got hit=%v direction=%s", r.IsHit, r.Direction)
	}
	if r.DaysFromProjection != 1 {
		t.Errorf("expected move 1 day after anniversary, got %d", r.DaysFromProjection)
	}
}

func TestHitEmptyCandles(t *testing.T) {
	tester := NewHitTester(hitTestConfig())
	if results := tester.TestRatioHits(nil, pivotAtStart(), 2.0, 3); len(results) != 0 {
		t.Errorf("expected no results on empty candles, got %d", len(results))
	}
}
