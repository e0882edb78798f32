package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/config"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

func TestFormatRatio(t *testing.T) {
	cases := map[float64]string{
		0.618: "0.618",
		0.5:   "0.5",
		1.0:   "1",
		2.618: "2.618",
	}
	for ratio, want := range cases {
		if got := FormatRatio(ratio); got != want {
			t.Errorf("FormatRatio(%v) = %q, want %q", ratio, got, want)
		}
	}
}

func TestFormatPeriod(t *testing.T) {
	if got := FormatPeriod(90); got != "90d" {
		t.Errorf("FormatPeriod(90) = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2024-03-07" {
		t.Errorf("FormatDate = %q", got)
	}
}

func TestIntensityBar(t *testing.T) {
	if got := IntensityBar(0); got != strings.Repeat("░", 10) {
		t.Errorf("empty bar: %q", got)
	}
	if got := IntensityBar(1); got != strings.Repeat("█", 10) {
		t.Errorf("full bar: %q", got)
	}
	if got := IntensityBar(0.6); strings.Count(got, "█") != 6 {
		t.Errorf("expected 6 filled segments, got %q", got)
	}
	// Out-of-range inputs are clamped.
	if got := IntensityBar(2.5); got != strings.Repeat("█", 10) {
		t.Errorf("clamped bar: %q", got)
	}
}

func TestFormatFactors(t *testing.T) {
	got := FormatFactors([]string{"FIB_0.618", "90D_ANNIVERSARY"})
	if got != "FIB_0.618 + 90D_ANNIVERSARY" {
		t.Errorf("FormatFactors = %q", got)
	}
}

func TestStripANSI(t *testing.T) {
	colored := ColorGreen + "up" + ColorReset
	if got := stripANSI(colored); got != "up" {
		t.Errorf("stripANSI = %q", got)
	}
}

func TestEngineConfigTranslation(t *testing.T) {
	cfg := &config.Config{
		Engine: config.EngineConfig{
			BaseUnit:             144,
			RecentWindow:         3,
			MajorWindow:          20,
			RecentPivotCap:       5,
			MinRatioCandles:      100,
			MinPeriodCandles:     400,
			MinConfluenceCandles: 100,
			MinPeriodSamples:     5,
			ConfluenceWeight:     0.25,
			HitLookbackDays:      365,
		},
		Anchors: map[string][]config.AnchorConfig{
			"BTCUSDT": {
				{Date: "2021-11-10", Price: 69000, Kind: "MAJOR_HIGH"},
				{Date: "not-a-date", Price: 1, Kind: "MAJOR_LOW"},
			},
		},
	}

	ec := engineConfig(cfg)

	if ec.BaseUnit != 144 {
		t.Errorf("expected base unit 144, got %d", ec.BaseUnit)
	}
	if ec.ConfluenceWeight != 0.25 {
		t.Errorf("expected confluence weight 0.25, got %v", ec.ConfluenceWeight)
	}
	if ec.HitLookbackDays != 365 {
		t.Errorf("expected lookback 365, got %d", ec.HitLookbackDays)
	}

	anchors := ec.Anchors["BTCUSDT"]
	if len(anchors) != 1 {
		t.Fatalf("malformed anchor dates must be dropped, got %d anchors", len(anchors))
	}
	a := anchors[0]
	if a.Kind != models.PivotMajorHigh || a.Price != 69000 {
		t.Errorf("unexpected anchor %+v", a)
	}
	if !a.Date.Equal(time.Date(2021, 11, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected anchor date %v", a.Date)
	}
	if a.Strength != ec.MajorStrength {
		t.Errorf("anchor strength must match major tier, got %v", a.Strength)
	}
}
