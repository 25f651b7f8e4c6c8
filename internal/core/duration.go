// Package core provides the time-entry domain: categories, parsers and report aggregation.
//
// This file parses user-typed durations into minutes. Input is tried against an
// ordered list of grammars; the first one that structurally matches decides the
// result, with a plain-integer fallback when the matched grammar fails to parse.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// QuickDurations are the preset durations offered as one-tap choices.
var QuickDurations = []int{15, 30, 45, 60, 90, 120}

// IsQuickDuration reports whether minutes is one of the preset choices.
func IsQuickDuration(minutes int) bool {
	for _, q := range QuickDurations {
		if q == minutes {
			return true
		}
	}
	return false
}

type durationGrammar struct {
	name  string
	match func(s string) bool
	parse func(s string) (int, error)
}

// durationGrammars is ordered by priority.
var durationGrammars = []durationGrammar{
	{
		name:  "hours_minutes",
		match: func(s string) bool { return strings.Contains(s, ":") },
		parse: parseHoursMinutes,
	},
	{
		name:  "decimal_hours",
		match: func(s string) bool { return strings.ContainsAny(s, ".,") },
		parse: parseDecimalHours,
	},
	{
		name:  "minutes",
		match: func(string) bool { return true },
		parse: parsePlainMinutes,
	},
}

// ParseDuration converts user input to minutes.
//
// Accepted forms, in priority order:
//
//	ParseDuration("1:30") -> 90   (H:M, either side may be empty)
//	ParseDuration("1.5")  -> 90   (decimal hours, comma or dot, truncated)
//	ParseDuration("45")   -> 45   (plain minutes)
//
// The result must be within [1, 1440].
func ParseDuration(text string) (int, error) {
	value, err := matchDuration(strings.TrimSpace(text))
	if err != nil {
		if errors.Is(err, ErrOutOfRange) {
			return 0, newParseError(OutOfRange, text)
		}
		return 0, newParseError(InvalidFormat, text)
	}
	if value < MinDurationMinutes || value > MaxDurationMinutes {
		return 0, newParseError(OutOfRange, text)
	}
	return value, nil
}

// matchDuration runs the first grammar that matches s, falling back to plain
// minutes when that grammar cannot parse it.
func matchDuration(s string) (int, error) {
	for _, g := range durationGrammars {
		if !g.match(s) {
			continue
		}
		v, err := g.parse(s)
		if err == nil || errors.Is(err, ErrOutOfRange) {
			return v, err
		}
		return parsePlainMinutes(s)
	}
	return 0, ErrInvalidFormat
}

func parseHoursMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, ErrInvalidFormat
	}
	hours, err := parseSignedPart(parts[0])
	if err != nil {
		return 0, err
	}
	mins, err := parseSignedPart(parts[1])
	if err != nil {
		return 0, err
	}
	if abs(hours) > MaxDurationMinutes || abs(mins) > MaxDurationMinutes {
		return 0, ErrOutOfRange
	}
	return hours*60 + mins, nil
}

// parseDecimalHours accepts any float literal, truncating minutes toward zero.
// Negative values come back as-is and fail the range check. Hex floats are rejected.
func parseDecimalHours(s string) (int, error) {
	if strings.ContainsAny(s, "xX") {
		return 0, ErrInvalidFormat
	}
	h, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrOutOfRange
		}
		return 0, ErrInvalidFormat
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, ErrInvalidFormat
	}
	if math.Abs(h) > MaxDurationMinutes {
		return 0, ErrOutOfRange
	}
	return int(h * 60), nil
}

func parsePlainMinutes(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrOutOfRange
		}
		return 0, ErrInvalidFormat
	}
	return v, nil
}

// parseSignedPart reads one side of H:M as an optionally signed integer;
// the empty string counts as zero.
func parseSignedPart(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return parsePlainMinutes(s)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
