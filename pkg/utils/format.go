// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
)

// FormatCompact formats a number in compact form (K/M/B).
func FormatCompact(value float64) string {
	abs := math.Abs(value)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", value/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", value/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", value/1e3)
	}
	return fmt.Sprintf("%.2f", value)
}

// FormatSigned formats a number with an explicit sign.
func FormatSigned(value float64) string {
	if value > 0 {
		return fmt.Sprintf("+%.2f", value)
	}
	return fmt.Sprintf("%.2f", value)
}
