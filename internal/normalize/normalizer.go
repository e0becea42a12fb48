package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/logger"
	"github.com/pfrederiksen/gigmerge/internal/venue"
)

// ErrNoActs is returned for records with no performer left after cleaning.
var ErrNoActs = errors.New("no acts left after cleaning")

// VenueResolver canonicalizes venues. *venue.Registry implements it.
type VenueResolver interface {
	ResolveKnown(rawID, rawName string) (string, bool)
	Lookup(id string) (venue.Entry, bool)
	FormatLocation(id string) (string, bool)
}

// Normalizer cleans records in place.
type Normalizer struct {
	venues VenueResolver
}

// New returns a Normalizer backed by venues, or by the default registry
// when venues is nil.
func New(venues VenueResolver) *Normalizer {
	if venues == nil {
		venues = venue.Default()
	}
	return &Normalizer{venues: venues}
}

// Stats summarizes a NormalizeAll batch.
type Stats struct {
	Input         int
	Output        int
	Rejected      int
	Recovered     int
	UnknownVenues int
}

// Normalize cleans evt in place. The only error is ErrNoActs; every other
// unparseable field falls back to a safe default.
func (n *Normalizer) Normalize(evt *event.Event) error {
	_, err := n.normalize(evt)
	return err
}

func (n *Normalizer) normalize(evt *event.Event) (knownVenue bool, err error) {
	acts := CleanActs(evt.Acts)
	if len(acts) == 0 {
		return false, ErrNoActs
	}
	evt.Acts = acts
	evt.Date = event.WallClock(evt.Date)

	knownVenue = n.normalizeVenue(evt)

	if t, ok := Time(evt.Time); ok {
		evt.Time = t
	} else {
		logger.Debug("Unparseable time, using default", logger.Fields{
			"event_id": evt.ID,
			"time":     evt.Time,
			"source":   evt.Source,
		})
		evt.Time = t
	}

	if age, ok := Age(evt.AgeRequirement); ok {
		evt.AgeRequirement = age
	} else {
		logger.Debug("Unrecognized age requirement, using all-ages", logger.Fields{
			"event_id": evt.ID,
			"age":      evt.AgeRequirement,
			"source":   evt.Source,
		})
		evt.AgeRequirement = age
	}

	evt.Flags = Flags(evt.Flags)
	evt.GenreTags = GenreTags(evt.GenreTags)
	evt.Source = strings.TrimSpace(evt.Source)
	evt.SourceURL = strings.TrimSpace(evt.SourceURL)

	evt.RefreshIdentity()
	return knownVenue, nil
}

func (n *Normalizer) normalizeVenue(evt *event.Event) bool {
	rawID, rawName := evt.VenueID, CleanText(evt.VenueName)

	id, known := n.venues.ResolveKnown(rawID, rawName)
	evt.VenueID = id

	if known {
		if entry, ok := n.venues.Lookup(id); ok {
			evt.VenueName = entry.Name
		}
		if loc, ok := n.venues.FormatLocation(id); ok {
			evt.VenueLocation = loc
		}
		return true
	}

	if rawName == "" {
		rawName = UnknownVenueName
	}
	evt.VenueName = rawName
	evt.VenueLocation = Location(evt.VenueLocation)

	logger.Info("Unknown venue", logger.Fields{
		"venue_id":   id,
		"raw_id":     rawID,
		"venue_name": rawName,
		"source":     evt.Source,
	})
	return false
}

// NormalizeAll normalizes a batch without mutating its members. Records
// without acts are dropped. A record whose normalization panics is kept
// raw, minus blank acts and with a slug for a blank venue id.
func (n *Normalizer) NormalizeAll(events []*event.Event) ([]*event.Event, Stats) {
	stats := Stats{Input: len(events)}
	out := make([]*event.Event, 0, len(events))

	for i, evt := range events {
		if evt == nil {
			stats.Rejected++
			continue
		}

		result, known, recovered, err := n.normalizeOne(evt)
		switch {
		case recovered:
			stats.Recovered++
		case errors.Is(err, ErrNoActs):
			stats.Rejected++
			logger.Warn("Dropping record without acts", logger.Fields{
				"index":    i,
				"source":   evt.Source,
				"venue_id": evt.VenueID,
				"date":     evt.DayKey(),
			})
			continue
		case !known:
			stats.UnknownVenues++
		}
		out = append(out, result)
	}

	stats.Output = len(out)
	return out, stats
}

func (n *Normalizer) normalizeOne(evt *event.Event) (result *event.Event, known, recovered bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Normalization failed, salvaging raw record", logger.Fields{
				"source":   evt.Source,
				"venue_id": evt.VenueID,
			}, fmt.Errorf("panic: %v", r))
			result, err = salvage(evt)
			known, recovered = false, err == nil
		}
	}()

	work := evt.Clone()
	known, err = n.normalize(work)
	if err != nil {
		return nil, false, false, err
	}
	return work, known, false, nil
}

// salvage keeps a record whose normalization failed, as long as it still
// names an act. Blank acts are dropped and a blank venue id gets a slug.
// evt itself is returned when nothing needs fixing.
func salvage(evt *event.Event) (*event.Event, error) {
	acts := make([]string, 0, len(evt.Acts))
	for _, act := range evt.Acts {
		if strings.TrimSpace(act) != "" {
			acts = append(acts, act)
		}
	}
	if len(acts) == 0 {
		return nil, ErrNoActs
	}
	if len(acts) == len(evt.Acts) && strings.TrimSpace(evt.VenueID) != "" {
		return evt, nil
	}

	out := evt.Clone()
	out.Acts = acts
	if strings.TrimSpace(out.VenueID) == "" {
		out.VenueID = venue.Slug(out.VenueName)
	}
	out.RefreshIdentity()
	return out, nil
}
