package engine

import (
	"math"
	"sort"
	"time"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// dateOf truncates a timestamp to its UTC calendar date. All date arithmetic
// in the engine happens on these midnight-UTC values.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// roundDays rounds an exact real-valued day offset half away from zero.
func roundDays(offset float64) int {
	return int(math.Round(offset))
}

// percentChange returns the percent change from one price to another.
func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

// indexOfDate returns the index of the candle on the given calendar date, or
// -1 if no candle falls on that date. Candles must be ordered by timestamp.
func indexOfDate(candles []models.Candle, date time.Time) int {
	date = dateOf(date)
	i := sort.Search(len(candles), func(i int) bool {
		return !dateOf(candles[i].Timestamp).Before(date)
	})
	if i < len(candles) && dateOf(candles[i].Timestamp).Equal(date) {
		return i
	}
	return -1
}

// indexAtOrAfter returns the index of the first candle on or after the given
// date, provided it is within maxSlip days; -1 otherwise. Used to land
// projected dates on the nearest traded candle.
func indexAtOrAfter(candles []models.Candle, date time.Time, maxSlip int) int {
	date = dateOf(date)
	i := sort.Search(len(candles), func(i int) bool {
		return !dateOf(candles[i].Timestamp).Before(date)
	})
	if i >= len(candles) {
		return -1
	}
	if int(dateOf(candles[i].Timestamp).Sub(date).Hours()/24) > maxSlip {
		return -1
	}
	return i
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// stdDev calculates the population standard deviation of a slice of float64.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// clamp01 clamps a value to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ResampleWeekly aggregates an ordered daily candle sequence into weekly
// candles. Each week runs Monday through Sunday in UTC; the weekly candle
// carries the first open, last close, the extreme high/low, the summed
// volume, and the Monday timestamp.
func ResampleWeekly(candles []models.Candle) []models.Candle {
	if len(candles) == 0 {
		return nil
	}

	var weekly []models.Candle
	var current models.Candle
	var currentWeek time.Time
	started := false

	for _, c := range candles {
		week := weekStart(c.Timestamp)
		if !started || !week.Equal(currentWeek) {
			if started {
				weekly = append(weekly, current)
			}
			current = models.Candle{
				Timestamp: week,
				Open:      c.Open,
				High:      c.High,
				Low:       c.Low,
				Close:     c.Close,
				Volume:    c.Volume,
			}
			currentWeek = week
			started = true
			continue
		}
		if c.High > current.High {
			current.High = c.High
		}
		if c.Low < current.Low {
			current.Low = c.Low
		}
		current.Close = c.Close
		current.Volume += c.Volume
	}
	weekly = append(weekly, current)

	return weekly
}

// weekStart returns the Monday 00:00 UTC of the week containing t.
func weekStart(t time.Time) time.Time {
	d := dateOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
