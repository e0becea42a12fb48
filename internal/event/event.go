package event

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Normalized defaults. A record carrying one of these is treated as having no
// specific information for that field.
const (
	DefaultTime = "8pm"

	AgeAllAges = "all-ages"
	Age18      = "18+"
	Age21      = "21+"
)

// DayLayout is the calendar-day key used to partition records.
const DayLayout = "2006-01-02"

// Event is one concert listing as produced by an upstream source, and after
// normalization and merging, one canonical show in the catalog.
type Event struct {
	ID             string
	StableKey      string
	Date           time.Time
	VenueID        string
	VenueName      string
	VenueLocation  string
	Acts           []string // headliner first
	AgeRequirement string
	PriceAdvance   *int
	PriceDoor      *int
	Time           string
	Flags          []string
	Source         string
	SourceURL      string
	GenreTags      []string
}

// GenerateID creates a deterministic ID for a show from its day, venue and headliner.
func GenerateID(day, venueID, headliner string) string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(day + "|" + venueID + "|" + headliner)))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// GenerateStableKey creates an identifier that survives date and time changes,
// so a rescheduled show can be matched with its earlier listing.
func GenerateStableKey(venueID, headliner string) string {
	normalized := strings.ToLower(strings.TrimSpace(headliner))

	h := sha1.New()
	h.Write([]byte(venueID + "|" + normalized))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// New creates an Event with defaults applied and identity populated.
func New(date time.Time, venueID, venueName, venueLocation string, acts []string, source string) *Event {
	evt := &Event{
		Date:           date,
		VenueID:        venueID,
		VenueName:      venueName,
		VenueLocation:  venueLocation,
		Acts:           acts,
		AgeRequirement: AgeAllAges,
		Time:           DefaultTime,
		Source:         source,
	}
	evt.RefreshIdentity()
	return evt
}

// RefreshIdentity recomputes ID and StableKey from the current field values.
func (e *Event) RefreshIdentity() {
	e.ID = GenerateID(e.DayKey(), e.VenueID, e.Headliner())
	e.StableKey = GenerateStableKey(e.VenueID, e.Headliner())
}

// Headliner returns the first act, or "" when the lineup is empty.
func (e *Event) Headliner() string {
	if len(e.Acts) == 0 {
		return ""
	}
	return e.Acts[0]
}

// Support returns every act except the headliner.
func (e *Event) Support() []string {
	if len(e.Acts) < 2 {
		return nil
	}
	return e.Acts[1:]
}

// DayKey returns the calendar day of the show, e.g. "2026-01-24".
func (e *Event) DayKey() string {
	return e.Date.Format(DayLayout)
}

// DayOfWeek returns the abbreviated weekday (Mon, Tue, ...).
func (e *Event) DayOfWeek() string {
	return e.Date.Format("Mon")
}

// DateDisplay returns the listing date, e.g. "Fri Jan 24".
func (e *Event) DateDisplay() string {
	return e.Date.Format("Mon Jan 2")
}

// PriceDisplay formats the known prices, e.g. "$25/$30".
func (e *Event) PriceDisplay() string {
	switch {
	case e.PriceAdvance != nil && e.PriceDoor != nil:
		return fmt.Sprintf("$%d/$%d", *e.PriceAdvance, *e.PriceDoor)
	case e.PriceAdvance != nil:
		return fmt.Sprintf("$%d", *e.PriceAdvance)
	case e.PriceDoor != nil:
		return fmt.Sprintf("$%d", *e.PriceDoor)
	}
	return ""
}

// Sources returns the individual sources behind a record, expanding a
// "merged:a+b" composite.
func (e *Event) Sources() []string {
	return SplitSource(e.Source)
}

// MergedSourcePrefix marks a source composed from several upstream sources.
const MergedSourcePrefix = "merged:"

// SplitSource expands a composite source marker into its parts.
func SplitSource(source string) []string {
	if source == "" {
		return nil
	}
	if !strings.HasPrefix(source, MergedSourcePrefix) {
		return []string{source}
	}
	return strings.Split(strings.TrimPrefix(source, MergedSourcePrefix), "+")
}

// JoinSources builds the source marker for a record built from sources.
// More than one distinct source yields "merged:a+b" with parts sorted.
func JoinSources(sources []string) string {
	seen := make(map[string]bool)
	var distinct []string
	for _, src := range sources {
		for _, part := range SplitSource(src) {
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			distinct = append(distinct, part)
		}
	}
	switch len(distinct) {
	case 0:
		return ""
	case 1:
		return distinct[0]
	}
	sort.Strings(distinct)
	return MergedSourcePrefix + strings.Join(distinct, "+")
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	c := *e
	c.Acts = cloneStrings(e.Acts)
	c.Flags = cloneStrings(e.Flags)
	c.GenreTags = cloneStrings(e.GenreTags)
	if e.PriceAdvance != nil {
		v := *e.PriceAdvance
		c.PriceAdvance = &v
	}
	if e.PriceDoor != nil {
		v := *e.PriceDoor
		c.PriceDoor = &v
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Price returns a pointer to v, for filling the optional price fields.
func Price(v int) *int {
	return &v
}
