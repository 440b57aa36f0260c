// Package datemath holds the calendar helpers used for deadlines and project
// durations. Dates travel as "YYYY-MM-DD" strings and are interpreted as local
// calendar days.
package datemath

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// now is swapped in tests.
var now = time.Now

// Layouts accepted by ToISO besides plain ISO dates. Zoned layouts are
// converted to the local zone before the date is taken.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ToISO normalizes value to a local "YYYY-MM-DD" date, or "" when it cannot
// be parsed.
func ToISO(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if t, err := time.ParseInLocation(Layout, value, time.Local); err == nil {
		return t.Format(Layout)
	}

	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return FromTime(t)
		}
	}

	return ""
}

// FromTime returns the local calendar date of t.
func FromTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(Layout)
}

func TodayISO() string {
	return FromTime(now())
}

// AddDays shifts an ISO date by n calendar days.
func AddDays(iso string, n int) string {
	d, ok := civil(iso)
	if !ok {
		return ""
	}
	return d.AddDate(0, 0, n).Format(Layout)
}

// DaysUntil counts calendar days from today to value. Positive is in the
// future, negative in the past. Empty or invalid input yields 0.
func DaysUntil(value string) int {
	target, ok := civil(ToISO(value))
	if !ok {
		return 0
	}
	today, _ := civil(TodayISO())
	return daysBetween(today, target)
}

// DurationPhrase describes the span from start to end as "13 days",
// "3 weeks", "7 months" or "2 years". It reports false when either date is
// missing or end is not after start.
func DurationPhrase(start, end string) (string, bool) {
	s, ok := civil(ToISO(start))
	if !ok {
		return "", false
	}
	e, ok := civil(ToISO(end))
	if !ok {
		return "", false
	}

	days := daysBetween(s, e)
	if days <= 0 {
		return "", false
	}

	switch {
	case days < 14:
		return plural(days, "day"), true
	case days < 60:
		return plural(rounded(days, 7), "week"), true
	case days < 365:
		return plural(rounded(days, 30), "month"), true
	default:
		return plural(rounded(days, 365), "year"), true
	}
}

// civil parses an ISO date into UTC midnight so differences are whole days
// regardless of DST transitions in the local zone.
func civil(iso string) (time.Time, bool) {
	if iso == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(Layout, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func rounded(days, unit int) int {
	n := int(math.Round(float64(days) / float64(unit)))
	if n < 1 {
		n = 1
	}
	return n
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
