// Package filter narrows a concert catalog for listing and export.
//
// Criteria combine with AND; the values inside one criterion combine with
// OR:
//   - Date range (from/to, inclusive, by calendar day)
//   - Venues (canonical id, or case-insensitive substring of the name)
//   - Bands (case-insensitive substring of any act)
//   - Locations (case-insensitive substring of the venue location)
//   - Weekends only (Saturday/Sunday)
//   - Maximum price (cheapest known price; unpriced shows pass)
//   - Ages (exact age requirement)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Locations = []string{"Cambridge"}
//	filtered := f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/gigmerge/internal/event"
)

// Filter represents show filtering criteria
type Filter struct {
	// Date range filtering
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Venue filtering: exact canonical id or name substring
	Venues []string `json:"venues,omitempty"`

	// Act filtering (case-insensitive substring match on any act)
	Bands []string `json:"bands,omitempty"`

	// Location filtering (case-insensitive substring match)
	Locations []string `json:"locations,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// MaxPrice in whole dollars; zero disables it
	MaxPrice int `json:"max_price,omitempty"`

	// Age requirements to keep, e.g. "all-ages", "18+"
	Ages []string `json:"ages,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all shows until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Venues:    []string{},
		Bands:     []string{},
		Locations: []string{},
		Ages:      []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Venues) == 0 &&
		len(f.Bands) == 0 &&
		len(f.Locations) == 0 &&
		!f.WeekendsOnly &&
		f.MaxPrice == 0 &&
		len(f.Ages) == 0
}

// Matches checks if a show matches all active filter criteria.
// Shows without a date pass the date criteria.
func (f *Filter) Matches(evt *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if !evt.Date.IsZero() {
		day := event.StartOfDay(evt.Date)
		if f.DateFrom != nil && day.Before(event.StartOfDay(*f.DateFrom)) {
			return false
		}
		if f.DateTo != nil && day.After(*f.DateTo) {
			return false
		}
		if f.WeekendsOnly && !evt.IsWeekend() {
			return false
		}
	}

	if len(f.Venues) > 0 && !f.matchesVenue(evt) {
		return false
	}

	if len(f.Bands) > 0 && !f.matchesBand(evt) {
		return false
	}

	if len(f.Locations) > 0 && !containsAny(evt.VenueLocation, f.Locations) {
		return false
	}

	if f.MaxPrice > 0 {
		if cheapest, ok := cheapestPrice(evt); ok && cheapest > f.MaxPrice {
			return false
		}
	}

	if len(f.Ages) > 0 {
		matched := false
		for _, age := range f.Ages {
			if strings.EqualFold(evt.AgeRequirement, age) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func (f *Filter) matchesVenue(evt *event.Event) bool {
	for _, v := range f.Venues {
		if strings.EqualFold(evt.VenueID, v) {
			return true
		}
	}
	return containsAny(evt.VenueName, f.Venues)
}

func (f *Filter) matchesBand(evt *event.Event) bool {
	for _, act := range evt.Acts {
		if containsAny(act, f.Bands) {
			return true
		}
	}
	return false
}

// containsAny reports whether s contains any needle, ignoring case.
func containsAny(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func cheapestPrice(evt *event.Event) (int, bool) {
	switch {
	case evt.PriceAdvance != nil && evt.PriceDoor != nil:
		return min(*evt.PriceAdvance, *evt.PriceDoor), true
	case evt.PriceAdvance != nil:
		return *evt.PriceAdvance, true
	case evt.PriceDoor != nil:
		return *evt.PriceDoor, true
	}
	return 0, false
}

// Apply applies the filter to a list of shows and returns only matching shows.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	var filtered []*event.Event
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Mar 1, 2026 | To: Mar 15, 2026 | Bands: converge | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}

	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}

	if len(f.Bands) > 0 {
		parts = append(parts, fmt.Sprintf("Bands: %s", strings.Join(f.Bands, ", ")))
	}

	if len(f.Locations) > 0 {
		parts = append(parts, fmt.Sprintf("Locations: %s", strings.Join(f.Locations, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	if f.MaxPrice > 0 {
		parts = append(parts, fmt.Sprintf("Max price: $%d", f.MaxPrice))
	}

	if len(f.Ages) > 0 {
		parts = append(parts, fmt.Sprintf("Ages: %s", strings.Join(f.Ages, ", ")))
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		WeekendsOnly: f.WeekendsOnly,
		MaxPrice:     f.MaxPrice,
		Venues:       cloneStrings(f.Venues),
		Bands:        cloneStrings(f.Bands),
		Locations:    cloneStrings(f.Locations),
		Ages:         cloneStrings(f.Ages),
	}

	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}

	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}

	return clone
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
