package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// dateFormat is the display layout for calendar dates, overridable from the
// ui config section.
var dateFormat = "2006-01-02"

// FormatDate formats a time as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(dateFormat)
}

// FormatRatio renders a catalog ratio without trailing zeros, e.g. "0.618".
func FormatRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', -1, 64)
}

// FormatPeriod renders an anniversary period, e.g. "90d".
func FormatPeriod(period int) string {
	return fmt.Sprintf("%dd", period)
}

// FormatFactors joins factor labels for display.
func FormatFactors(labels []string) string {
	return strings.Join(labels, " + ")
}

// IntensityBar renders a 10-segment bar for a [0, 1] intensity.
func IntensityBar(intensity float64) string {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	filled := int(intensity*10 + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

// FormatBias renders a projection bias with color.
func (o *Output) FormatBias(bias models.Bias) string {
	switch bias {
	case models.BiasSupport:
		return o.Green(string(bias))
	case models.BiasResistance:
		return o.Red(string(bias))
	}
	return string(bias)
}

// FormatPivotKind renders a pivot kind with color.
func (o *Output) FormatPivotKind(kind models.PivotKind) string {
	if kind.IsHigh() {
		return o.Red(string(kind))
	}
	return o.Green(string(kind))
}

// FormatDirection renders a hit direction with color.
func (o *Output) FormatDirection(d models.Direction) string {
	switch d {
	case models.DirectionUp:
		return o.Green("↑ UP")
	case models.DirectionDown:
		return o.Red("↓ DOWN")
	}
	return o.DimText("· NONE")
}

// FormatHitMark renders a hit/miss marker.
func (o *Output) FormatHitMark(hit bool) string {
	if hit {
		return o.Green("✓ HIT")
	}
	return o.DimText("✗ miss")
}
