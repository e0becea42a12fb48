package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/normalize"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByVenue SortOrder = "venue"
	SortByBand  SortOrder = "band"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case SortByDate, SortByVenue, SortByBand:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'date', 'venue' or 'band')", s)
}

// sortEvents sorts a slice of shows based on the specified sort order
func sortEvents(events []*event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByVenue:
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].VenueID != events[j].VenueID {
				return events[i].VenueID < events[j].VenueID
			}
			return compareByDate(events[i], events[j])
		})
	case SortByBand:
		sort.SliceStable(events, func(i, j int) bool {
			bi := strings.ToLower(events[i].Headliner())
			bj := strings.ToLower(events[j].Headliner())
			if bi != bj {
				return bi < bj
			}
			return compareByDate(events[i], events[j])
		})
	}
}

// compareByDate orders by day, then door time, then venue.
// Undated shows go last.
func compareByDate(i, j *event.Event) bool {
	if i.Date.IsZero() != j.Date.IsZero() {
		return !i.Date.IsZero()
	}
	if di, dj := i.DayKey(), j.DayKey(); di != dj {
		return di < dj
	}
	if mi, mj := showMinutes(i), showMinutes(j); mi != mj {
		return mi < mj
	}
	if i.VenueID != j.VenueID {
		return i.VenueID < j.VenueID
	}
	return strings.ToLower(i.Headliner()) < strings.ToLower(j.Headliner())
}

func showMinutes(evt *event.Event) int {
	if m, ok := normalize.Minutes(evt.Time); ok {
		return m
	}
	return 24 * 60
}
