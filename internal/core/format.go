package core

import (
	"fmt"
	"math"
)

// SplitMinutes decomposes minutes into whole hours and the remainder.
func SplitMinutes(minutes int) (hours, rest int) {
	return minutes / 60, minutes % 60
}

// HumanDuration renders minutes as "1h 30m", or "30m" under an hour.
func HumanDuration(minutes int) string {
	h, m := SplitMinutes(minutes)
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FullDuration always includes the hours, e.g. "0h 45m".
func FullDuration(minutes int) string {
	h, m := SplitMinutes(minutes)
	return fmt.Sprintf("%dh %dm", h, m)
}

// RoundPercent rounds to one decimal place, half away from zero.
func RoundPercent(p float64) float64 {
	return math.Round(p*10) / 10
}

// FormatPercent renders a percentage with one decimal, e.g. "33.3%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", RoundPercent(p))
}
