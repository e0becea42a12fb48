package event

import (
	"sort"
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate. Layouts carrying an offset are
// converted to their own wall clock by WallClock.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 02 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon Jan 2 2006",
	"Monday, January 2, 2006",
	"1/2/2006",
	"01/02/06",
	"1.2.06",
	"01.02.06",
}

// yearlessLayouts need a year supplied by the caller's clock.
var yearlessLayouts = []string{
	"Jan 02",
	"Jan 2",
	"January 2",
	"Mon Jan 2",
	"Monday, January 2",
}

// ParseDate attempts to parse a source's date text into a wall-clock time.
// Returns time.Time{} (zero value) if parsing fails.
// Supports ISO-8601 with or without offset, "Jan 24 2026", "1/24/2026",
// "4.4.26", "02/15/26" and yearless forms such as "Jan 24" (current year).
func ParseDate(dateText string) time.Time {
	return parseDate(dateText, time.Now())
}

func parseDate(dateText string, now time.Time) time.Time {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateText); err == nil {
			return WallClock(t)
		}
	}

	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, dateText); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}

	// Could not parse, return zero time
	return time.Time{}
}

// WallClock drops timezone information, keeping the local wall-clock reading.
// The result is expressed in UTC so that equal wall clocks compare equal.
func WallClock(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// StartOfDay truncates t to midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsPast reports whether the show's day is before the day of now.
// Shows happening today are not past.
func (e *Event) IsPast(now time.Time) bool {
	if e.Date.IsZero() {
		return false // Can't determine, don't filter
	}
	return StartOfDay(e.Date).Before(StartOfDay(WallClock(now)))
}

// IsWithinDays checks if a show is within N days from now.
// Returns true if days <= 0 (feature disabled) or the date is unknown.
func (e *Event) IsWithinDays(now time.Time, days int) bool {
	if days <= 0 {
		return true // Feature disabled
	}
	if e.Date.IsZero() {
		return true
	}
	today := StartOfDay(WallClock(now))
	cutoff := today.AddDate(0, 0, days)
	return !e.IsPast(now) && e.Date.Before(cutoff)
}

// IsWeekend reports whether the show falls on Saturday or Sunday.
func (e *Event) IsWeekend() bool {
	wd := e.Date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// SortByDate orders shows chronologically, then by venue and headliner.
// Shows without a date go last, keeping their relative order.
func SortByDate(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date.IsZero() != b.Date.IsZero() {
			return !a.Date.IsZero()
		}
		if a.Date.IsZero() {
			return false
		}
		return lessByDate(a, b)
	})
}
