package store

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/errors"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// Property: for any valid candle data, saving candles and retrieving them over
// the same range produces equivalent data.
func TestProperty_CandleRoundTripConsistency(t *testing.T) {
	dbPath := "test_candles_property.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "BNBUSDT", "XRPUSDT"}

	properties.Property("Candle round-trip: save then retrieve produces equivalent data", prop.ForAll(
		func(symbolIdx int, count int, basePrice float64, baseVolume float64) bool {
			ctx := context.Background()

			// Unique symbol per run to avoid conflicts between iterations
			symbol := fmt.Sprintf("%s_%d", symbols[symbolIdx%len(symbols)], time.Now().UnixNano()%100000)

			candles := generateTestCandles(count, basePrice, baseVolume)

			if err := store.SaveCandles(ctx, symbol, "1d", candles); err != nil {
				t.Logf("Failed to save candles: %v", err)
				return false
			}

			from := candles[0].Timestamp.Add(-time.Second)
			to := candles[len(candles)-1].Timestamp.Add(time.Second)
			retrieved, err := store.GetCandles(ctx, symbol, "1d", from, to)
			if err != nil {
				t.Logf("Failed to get candles: %v", err)
				return false
			}

			if len(retrieved) != len(candles) {
				t.Logf("Count mismatch: expected %d, got %d", len(candles), len(retrieved))
				return false
			}

			for i, orig := range candles {
				if !candlesEqual(orig, retrieved[i]) {
					t.Logf("Candle mismatch at index %d: original=%+v, retrieved=%+v", i, orig, retrieved[i])
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
		gen.IntRange(1, 20),
		gen.Float64Range(100.0, 50000.0),
		gen.Float64Range(1000.0, 1000000.0),
	))

	properties.TestingRun(t)
}

func TestCandlesFreshness(t *testing.T) {
	dbPath := "test_candles_freshness.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	ts, err := store.GetCandlesFreshness(ctx, "BTCUSDT", "1d")
	if err != nil {
		t.Fatalf("freshness on empty store: %v", err)
	}
	if !ts.IsZero() {
		t.Errorf("expected zero freshness for unknown symbol, got %v", ts)
	}

	candles := generateTestCandles(3, 100, 1000)
	if err := store.SaveCandles(ctx, "BTCUSDT", "1d", candles); err != nil {
		t.Fatalf("save: %v", err)
	}

	ts, err = store.GetCandlesFreshness(ctx, "BTCUSDT", "1d")
	if err != nil {
		t.Fatalf("freshness: %v", err)
	}
	want := candles[len(candles)-1].Timestamp
	if !ts.Equal(want) {
		t.Errorf("expected freshness %v, got %v", want, ts)
	}

	// Re-saving an older candle must not move freshness backwards.
	if err := store.SaveCandles(ctx, "BTCUSDT", "1d", candles[:1]); err != nil {
		t.Fatalf("save older candle: %v", err)
	}
	ts, err = store.GetCandlesFreshness(ctx, "BTCUSDT", "1d")
	if err != nil {
		t.Fatalf("freshness after older save: %v", err)
	}
	if !ts.Equal(want) {
		t.Errorf("expected freshness to stay %v, got %v", want, ts)
	}
}

func TestClosedStoreReturnsDatabaseError(t *testing.T) {
	dbPath := "test_closed_store.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	store.Close()

	ctx := context.Background()
	candles := generateTestCandles(1, 100, 1000)

	if err := store.SaveCandles(ctx, "BTCUSDT", "1d", candles); !apperrors.Is(err, apperrors.ErrDatabaseError) {
		t.Errorf("expected ErrDatabaseError from closed store, got %v", err)
	}
	if _, err := store.GetCandles(ctx, "BTCUSDT", "1d", time.Time{}, time.Now()); !apperrors.Is(err, apperrors.ErrDatabaseError) {
		t.Errorf("expected ErrDatabaseError from closed store, got %v", err)
	}
	if _, err := store.GetCandlesFreshness(ctx, "BTCUSDT", "1d"); !apperrors.Is(err, apperrors.ErrDatabaseError) {
		t.Errorf("expected ErrDatabaseError from closed store, got %v", err)
	}
}

func TestSyncStatusRoundTrip(t *testing.T) {
	dbPath := "test_sync_status.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if ts := store.GetLastSync("candles:BTCUSDT:1d"); !ts.IsZero() {
		t.Errorf("expected zero last sync before any set, got %v", ts)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := store.SetLastSync("candles:BTCUSDT:1d", now); err != nil {
		t.Fatalf("set last sync: %v", err)
	}
	if ts := store.GetLastSync("candles:BTCUSDT:1d"); !ts.Equal(now) {
		t.Errorf("expected last sync %v, got %v", now, ts)
	}
}

// generateTestCandles builds count daily candles with consistent OHLC
// relationships starting from a fixed date.
func generateTestCandles(count int, basePrice, baseVolume float64) []models.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice + float64(i)
		candles[i] = models.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      p,
			High:      p * 1.01,
			Low:       p * 0.99,
			Close:     p * 1.005,
			Volume:    baseVolume,
		}
	}
	return candles
}

func candlesEqual(a, b models.Candle) bool {
	const eps = 1e-6
	return a.Timestamp.Equal(b.Timestamp) &&
		math.Abs(a.Open-b.Open) < eps &&
		math.Abs(a.High-b.High) < eps &&
		math.Abs(a.Low-b.Low) < eps &&
		math.Abs(a.Close-b.Close) < eps &&
		math.Abs(a.Volume-b.Volume) < eps
}
