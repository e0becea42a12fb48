package event

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		dateText  string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantHour  int
		wantZero  bool
	}{
		{
			name:      "Naive ISO timestamp",
			dateText:  "2026-01-24T20:00:00",
			wantYear:  2026,
			wantMonth: time.January,
			wantDay:   24,
			wantHour:  20,
		},
		{
			name:      "RFC3339 with offset keeps wall clock",
			dateText:  "2026-01-24T23:30:00-05:00",
			wantYear:  2026,
			wantMonth: time.January,
			wantDay:   24,
			wantHour:  23,
		},
		{
			name:      "Date only",
			dateText:  "2026-03-13",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   13,
		},
		{
			name:      "Full date Mar 13 2026",
			dateText:  "Mar 13 2026",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   13,
		},
		{
			name:      "Full date with comma Jan 24, 2026",
			dateText:  "Jan 24, 2026",
			wantYear:  2026,
			wantMonth: time.January,
			wantDay:   24,
		},
		{
			name:      "Dot format 4.4.26",
			dateText:  "4.4.26",
			wantYear:  2026,
			wantMonth: time.April,
			wantDay:   4,
		},
		{
			name:      "Slash format 02/15/26",
			dateText:  "02/15/26",
			wantYear:  2026,
			wantMonth: time.February,
			wantDay:   15,
		},
		{
			name:      "Slash format 1/24/2026",
			dateText:  "1/24/2026",
			wantYear:  2026,
			wantMonth: time.January,
			wantDay:   24,
		},
		{
			name:      "Month and day only Jan 24",
			dateText:  "Jan 24",
			wantYear:  2026,
			wantMonth: time.January,
			wantDay:   24,
		},
		{
			name:     "Empty string",
			dateText: "",
			wantZero: true,
		},
		{
			name:     "Invalid format",
			dateText: "Not a date",
			wantZero: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.dateText, now)

			if tt.wantZero {
				if !got.IsZero() {
					t.Errorf("parseDate(%q) = %v, want zero time", tt.dateText, got)
				}
				return
			}

			if got.Year() != tt.wantYear {
				t.Errorf("parseDate(%q).Year() = %d, want %d", tt.dateText, got.Year(), tt.wantYear)
			}
			if got.Month() != tt.wantMonth {
				t.Errorf("parseDate(%q).Month() = %v, want %v", tt.dateText, got.Month(), tt.wantMonth)
			}
			if got.Day() != tt.wantDay {
				t.Errorf("parseDate(%q).Day() = %d, want %d", tt.dateText, got.Day(), tt.wantDay)
			}
			if got.Hour() != tt.wantHour {
				t.Errorf("parseDate(%q).Hour() = %d, want %d", tt.dateText, got.Hour(), tt.wantHour)
			}
			if got.Location() != time.UTC {
				t.Errorf("parseDate(%q) location = %v, want UTC wall clock", tt.dateText, got.Location())
			}
		})
	}
}

func TestWallClock(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	in := time.Date(2026, time.January, 24, 23, 30, 0, 0, loc)

	got := WallClock(in)
	want := time.Date(2026, time.January, 24, 23, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WallClock() = %v, want %v", got, want)
	}

	if !WallClock(time.Time{}).IsZero() {
		t.Error("WallClock of zero time should stay zero")
	}
}

func TestEvent_IsPast(t *testing.T) {
	now := time.Date(2026, time.January, 24, 22, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"Yesterday", time.Date(2026, time.January, 23, 20, 0, 0, 0, time.UTC), true},
		{"Earlier today", time.Date(2026, time.January, 24, 19, 0, 0, 0, time.UTC), false},
		{"Tomorrow", time.Date(2026, time.January, 25, 20, 0, 0, 0, time.UTC), false},
		{"Unknown date", time.Time{}, false}, // Safe default: don't filter
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := &Event{Date: tt.date}
			if got := evt.IsPast(now); got != tt.want {
				t.Errorf("Event.IsPast() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvent_IsWithinDays(t *testing.T) {
	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		days int
		want bool
	}{
		{"Within 30 days - tomorrow", now.AddDate(0, 0, 1), 30, true},
		{"Within 30 days - next week", now.AddDate(0, 0, 7), 30, true},
		{"Beyond 30 days - next month", now.AddDate(0, 0, 35), 30, false},
		{"Feature disabled (days=0)", now.AddDate(0, 0, 35), 0, true},
		{"Past show", now.AddDate(0, 0, -2), 30, false},
		{"Unknown date", time.Time{}, 30, true}, // Safe default: include
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := &Event{Date: tt.date}
			if got := evt.IsWithinDays(now, tt.days); got != tt.want {
				t.Errorf("Event.IsWithinDays(%d) = %v, want %v", tt.days, got, tt.want)
			}
		})
	}
}

func TestSortByDate(t *testing.T) {
	mk := func(day int, venue, headliner string) *Event {
		evt := &Event{VenueID: venue, Acts: []string{headliner}}
		if day > 0 {
			evt.Date = time.Date(2026, time.January, day, 20, 0, 0, 0, time.UTC)
		}
		return evt
	}

	events := []*Event{
		mk(0, "zz", "Undated"),
		mk(24, "royale", "B"),
		mk(3, "paradise", "C"),
		mk(24, "paradise", "A"),
	}

	SortByDate(events)

	want := []string{"C", "A", "B", "Undated"}
	for i, evt := range events {
		if evt.Headliner() != want[i] {
			t.Errorf("position %d = %q, want %q", i, evt.Headliner(), want[i])
		}
	}
}
