package core

import (
	"strings"
	"time"
)

// relativeDays maps lower-cased keywords to the number of days before today.
var relativeDays = map[string]int{
	"today":                0,
	"сегодня":              0,
	"yesterday":            1,
	"вчера":                1,
	"day-before-yesterday": 2,
	"day before yesterday": 2,
	"позавчера":            2,
}

// reportDateLayouts are tried in order; the first that consumes the whole input wins.
var reportDateLayouts = []string{
	"2.1.2006",
	"2-1-2006",
	"2/1/2006",
	"2.1.06",
	"2-1-06",
	"2/1/06",
}

// ReportDateShortcuts are the keyword choices offered as one-tap buttons.
var ReportDateShortcuts = []string{"Today", "Yesterday", "Day before yesterday"}

// ParseReportDate resolves a relative keyword or an absolute day-first date.
// Dates after today are rejected.
func ParseReportDate(text string, today Date) (Date, error) {
	s := strings.ToLower(strings.TrimSpace(text))

	d, ok := parseRelativeDate(s, today)
	if !ok {
		d, ok = parseAbsoluteDate(s)
	}
	if !ok {
		return Date{}, newParseError(InvalidFormat, text)
	}
	if d.After(DateOf(today.Time)) {
		return Date{}, newParseError(FutureDate, text)
	}
	return d, nil
}

func parseRelativeDate(s string, today Date) (Date, bool) {
	back, ok := relativeDays[s]
	if !ok {
		return Date{}, false
	}
	return DateOf(today.Time).AddDays(-back), true
}

func parseAbsoluteDate(s string) (Date, bool) {
	for _, layout := range reportDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return DateOf(t), true
	}
	return Date{}, false
}
