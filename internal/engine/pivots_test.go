package engine

import (
	"testing"
	"time"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

func TestRecentDetectsSinglePeak(t *testing.T) {
	cfg := DefaultConfig()
	detector := NewPivotDetector(cfg)

	candles := makeDaily(11, rampPeak(11))
	pivots := detector.AllRecent(candles)

	if len(pivots) != 1 {
		t.Fatalf("expected 1 pivot, got %d", len(pivots))
	}
	p := pivots[0]
	if p.Kind != models.PivotHigh {
		t.Errorf("expected HIGH pivot, got %s", p.Kind)
	}
	wantDate := testStart.AddDate(0, 0, 5)
	if !p.Date.Equal(wantDate) {
		t.Errorf("expected pivot date %v, got %v", wantDate, p.Date)
	}
	if p.Price != 106 { // price 105 + 1 high offset
		t.Errorf("expected pivot price 106, got %v", p.Price)
	}
	if p.Strength != cfg.RecentStrength {
		t.Errorf("expected strength %v, got %v", cfg.RecentStrength, p.Strength)
	}
}

func TestRecentDetectsLowPivot(t *testing.T) {
	detector := NewPivotDetector(DefaultConfig())

	// V shape: trough at index 5.
	candles := makeDaily(11, func(i int) float64 {
		if i <= 5 {
			return 100 - float64(i)
		}
		return 100 - float64(10-i)
	})
	pivots := detector.AllRecent(candles)

	if len(pivots) != 1 {
		t.Fatalf("expected 1 pivot, got %d", len(pivots))
	}
	if pivots[0].Kind != models.PivotLow {
		t.Errorf("expected LOW pivot, got %s", pivots[0].Kind)
	}
	if pivots[0].Price != 94 { // price 95 - 1 low offset
		t.Errorf("expected pivot price 94, got %v", pivots[0].Price)
	}
}

func TestRecentOrderedMostRecentFirstAndCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RecentPivotCap = 2
	detector := NewPivotDetector(cfg)

	// Alternating peaks and troughs every 5 candles.
	candles := makeDaily(60, func(i int) float64 {
		cycle := i % 10
		if cycle < 5 {
			return 100 + float64(cycle)
		}
		return 100 + float64(10-cycle)
	})

	all := detector.AllRecent(candles)
	if len(all) < 4 {
		t.Fatalf("expected several pivots, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Date.After(all[i-1].Date) {
			t.Fatalf("pivots not ordered most recent first at %d", i)
		}
	}

	capped := detector.Recent(candles)
	if len(capped) != 2 {
		t.Errorf("expected cap of 2 pivots, got %d", len(capped))
	}
	if !capped[0].Date.Equal(all[0].Date) {
		t.Errorf("cap should keep the most recent pivots")
	}
}

func TestRecentStrictInequalityRejectsFlats(t *testing.T) {
	detector := NewPivotDetector(DefaultConfig())

	// Plateau: two equal maxima can never both strictly exceed each other.
	candles := makeDaily(11, flatAt(100, map[int]float64{5: 110, 6: 110}))
	pivots := detector.AllRecent(candles)

	if len(pivots) != 0 {
		t.Errorf("expected no pivots on a plateau, got %d", len(pivots))
	}
}

func TestRecentInsufficientData(t *testing.T) {
	detector := NewPivotDetector(DefaultConfig())
	candles := makeDaily(4, rampPeak(4))
	if pivots := detector.AllRecent(candles); pivots != nil {
		t.Errorf("expected nil for short series, got %d pivots", len(pivots))
	}
}

func TestMajorPivotKindsAndStrength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MajorWindow = 3
	detector := NewPivotDetector(cfg)

	weekly := makeDaily(9, rampPeak(9))
	pivots := detector.Major(weekly)

	if len(pivots) != 1 {
		t.Fatalf("expected 1 major pivot, got %d", len(pivots))
	}
	if pivots[0].Kind != models.PivotMajorHigh {
		t.Errorf("expected MAJOR_HIGH, got %s", pivots[0].Kind)
	}
	if pivots[0].Strength != cfg.MajorStrength {
		t.Errorf("expected strength %v, got %v", cfg.MajorStrength, pivots[0].Strength)
	}
}

func TestResampleWeekly(t *testing.T) {
	// 2024-01-01 is a Monday; 14 daily candles span exactly two weeks.
	candles := makeDaily(14, func(i int) float64 { return 100 + float64(i) })
	weekly := ResampleWeekly(candles)

	if len(weekly) != 2 {
		t.Fatalf("expected 2 weekly candles, got %d", len(weekly))
	}

	first := weekly[0]
	if !first.Timestamp.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected Monday timestamp, got %v", first.Timestamp)
	}
	if first.Open != 100 {
		t.Errorf("expected first open 100, got %v", first.Open)
	}
	if first.Close != 106 {
		t.Errorf("expected last close of week 106, got %v", first.Close)
	}
	if first.High != 107 { // day 6 price 106 + 1
		t.Errorf("expected week high 107, got %v", first.High)
	}
	if first.Low != 99 { // day 0 price 100 - 1
		t.Errorf("expected week low 99, got %v", first.Low)
	}
	if first.Volume != 7000 {
		t.Errorf("expected summed volume 7000, got %v", first.Volume)
	}
}

func TestResampleWeeklyEmpty(t *testing.T) {
	if weekly := ResampleWeekly(nil); weekly != nil {
		t.Errorf("expected nil for empty input, got %v", weekly)
	}
}
