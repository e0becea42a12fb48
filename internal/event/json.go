package event

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// wireLayout is the date representation written to every JSON file: an ISO
// timestamp without offset, since all show times are local wall clock.
const wireLayout = "2006-01-02T15:04:05"

type wireVenue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type wirePrice struct {
	Advance *int   `json:"advance"`
	Door    *int   `json:"door"`
	Display string `json:"display,omitempty"`
}

type wireEvent struct {
	ID             string    `json:"id,omitempty"`
	StableKey      string    `json:"stable_key,omitempty"`
	Date           string    `json:"date"`
	DayOfWeek      string    `json:"day_of_week,omitempty"`
	Venue          wireVenue `json:"venue"`
	Bands          []string  `json:"bands"`
	AgeRequirement string    `json:"age_requirement,omitempty"`
	Price          wirePrice `json:"price"`
	Time           string    `json:"time,omitempty"`
	Flags          []string  `json:"flags"`
	Source         string    `json:"source"`
	SourceURL      string    `json:"source_url,omitempty"`
	GenreTags      []string  `json:"genre_tags"`
}

// MarshalJSON writes the catalog wire format shared with the scrapers and the
// site renderer.
func (e *Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{
		ID:        e.ID,
		StableKey: e.StableKey,
		Venue: wireVenue{
			ID:       e.VenueID,
			Name:     e.VenueName,
			Location: e.VenueLocation,
		},
		Bands:          nonNil(e.Acts),
		AgeRequirement: e.AgeRequirement,
		Price: wirePrice{
			Advance: e.PriceAdvance,
			Door:    e.PriceDoor,
			Display: e.PriceDisplay(),
		},
		Time:      e.Time,
		Flags:     nonNil(e.Flags),
		Source:    e.Source,
		SourceURL: e.SourceURL,
		GenreTags: nonNil(e.GenreTags),
	}
	if !e.Date.IsZero() {
		w.Date = e.Date.Format(wireLayout)
		w.DayOfWeek = e.DayOfWeek()
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a record as written by a scraper. Nothing is normalized
// here; unknown or loose date text is parsed with ParseDate.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*e = Event{
		ID:             w.ID,
		StableKey:      w.StableKey,
		VenueID:        w.Venue.ID,
		VenueName:      w.Venue.Name,
		VenueLocation:  w.Venue.Location,
		Acts:           w.Bands,
		AgeRequirement: w.AgeRequirement,
		PriceAdvance:   w.Price.Advance,
		PriceDoor:      w.Price.Door,
		Time:           w.Time,
		Flags:          w.Flags,
		Source:         w.Source,
		SourceURL:      w.SourceURL,
		GenreTags:      w.GenreTags,
	}

	if strings.TrimSpace(w.Date) != "" {
		e.Date = ParseDate(w.Date)
		if e.Date.IsZero() {
			return fmt.Errorf("parsing date %q", w.Date)
		}
	}
	return nil
}

// DecodeList parses a JSON array of records. Any bad element fails the
// whole list; use DecodeRecords for scraper output.
func DecodeList(data []byte) ([]*Event, error) {
	events, bad, err := DecodeRecords(data)
	if err != nil {
		return nil, err
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("decoding events: %w", bad[0])
	}
	return events, nil
}

// DecodeRecords parses a JSON array of records one element at a time. Only
// a document that is not an array is an error; elements that fail to decode
// are returned in bad, each naming its index. Literal nulls are skipped.
func DecodeRecords(data []byte) (events []*Event, bad []error, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decoding events: %w", err)
	}

	events = make([]*Event, 0, len(raw))
	for i, elem := range raw {
		var evt *Event
		if err := json.Unmarshal(elem, &evt); err != nil {
			bad = append(bad, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if evt != nil {
			events = append(events, evt)
		}
	}
	return events, bad, nil
}

// EncodeList renders records as an indented JSON array.
func EncodeList(events []*Event) ([]byte, error) {
	if events == nil {
		events = []*Event{}
	}
	return json.MarshalIndent(events, "", "  ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
