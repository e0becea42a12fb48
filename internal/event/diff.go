package event

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Snapshot represents the published catalog at a point in time
type Snapshot struct {
	Events      map[string]*Event `json:"events"`       // keyed by Event.ID
	StableIndex map[string]string `json:"stable_index"` // StableKey → ID mapping
	ChangeLog   []*EventChange    `json:"change_log"`   // Recent changes
	UpdatedAt   string            `json:"updated_at"`   // RFC3339 timestamp
	RunID       string            `json:"run_id,omitempty"`
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events:      make(map[string]*Event),
		StableIndex: make(map[string]string),
		ChangeLog:   make([]*EventChange, 0),
	}
}

// DiffResult contains the results of comparing two snapshots
type DiffResult struct {
	NewEvents []*Event
	Venues    map[string][]*Event // new shows grouped by venue ID
}

// Diff compares current shows against a previous snapshot and returns the new ones.
// venueFilter restricts the result to one venue ID; "" or "all" keeps every venue.
func Diff(previous *Snapshot, current []*Event, venueFilter string) *DiffResult {
	result := &DiffResult{
		NewEvents: make([]*Event, 0),
		Venues:    make(map[string][]*Event),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	for _, evt := range current {
		if venueFilter != "" && !strings.EqualFold(venueFilter, "all") {
			if !strings.EqualFold(evt.VenueID, venueFilter) {
				continue
			}
		}

		if _, exists := previous.Events[evt.ID]; exists {
			continue
		}

		result.NewEvents = append(result.NewEvents, evt)
		result.Venues[evt.VenueID] = append(result.Venues[evt.VenueID], evt)
	}

	// Sort new shows for consistent output
	sort.SliceStable(result.NewEvents, func(i, j int) bool {
		return lessByDate(result.NewEvents[i], result.NewEvents[j])
	})

	for venueID := range result.Venues {
		group := result.Venues[venueID]
		sort.SliceStable(group, func(i, j int) bool {
			return lessByDate(group[i], group[j])
		})
	}

	return result
}

func lessByDate(a, b *Event) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.VenueID != b.VenueID {
		return a.VenueID < b.VenueID
	}
	return a.Headliner() < b.Headliner()
}

// CreateSnapshot creates a snapshot from a list of shows
func CreateSnapshot(events []*Event, updatedAt, runID string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt
	snap.RunID = runID

	for _, evt := range events {
		snap.Events[evt.ID] = evt
		if evt.StableKey != "" {
			snap.StableIndex[evt.StableKey] = evt.ID
		}
	}

	return snap
}

// Change types reported by DetectChanges.
const (
	ChangeNew    = "new"
	ChangeDate   = "date"
	ChangeTime   = "time"
	ChangeLineup = "lineup"
	ChangePrice  = "price"
	ChangeAge    = "age"
)

// EventChange represents a change detected in a show between two runs
type EventChange struct {
	EventID    string    `json:"event_id"`
	StableKey  string    `json:"stable_key"`
	ChangeType string    `json:"change_type"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	DetectedAt time.Time `json:"detected_at"`
}

// DetectChanges compares two versions of a show and returns detected changes
func DetectChanges(previous, current *Event) []*EventChange {
	now := time.Now().UTC()

	// If no previous show, this is a new show
	if previous == nil {
		return []*EventChange{
			{
				EventID:    current.ID,
				StableKey:  current.StableKey,
				ChangeType: ChangeNew,
				NewValue:   current.Headliner(),
				DetectedAt: now,
			},
		}
	}

	var changes []*EventChange
	add := func(changeType, oldValue, newValue string) {
		if oldValue == newValue {
			return
		}
		changes = append(changes, &EventChange{
			EventID:    current.ID,
			StableKey:  current.StableKey,
			ChangeType: changeType,
			OldValue:   oldValue,
			NewValue:   newValue,
			DetectedAt: now,
		})
	}

	add(ChangeDate, previous.DayKey(), current.DayKey())
	add(ChangeTime, previous.Time, current.Time)
	add(ChangeLineup, strings.Join(previous.Acts, ", "), strings.Join(current.Acts, ", "))
	add(ChangePrice, previous.PriceDisplay(), current.PriceDisplay())
	add(ChangeAge, previous.AgeRequirement, current.AgeRequirement)

	return changes
}

// CompareSnapshots compares two catalogs by stable key and returns all detected changes
func CompareSnapshots(previous, current *Snapshot) []*EventChange {
	var allChanges []*EventChange

	keys := make([]string, 0, len(current.StableIndex))
	for stableKey := range current.StableIndex {
		keys = append(keys, stableKey)
	}
	sort.Strings(keys)

	for _, stableKey := range keys {
		currentEvent := current.Events[current.StableIndex[stableKey]]
		if currentEvent == nil {
			continue
		}

		var previousEvent *Event
		if previous != nil {
			if previousID, exists := previous.StableIndex[stableKey]; exists {
				previousEvent = previous.Events[previousID]
			}
		}
		allChanges = append(allChanges, DetectChanges(previousEvent, currentEvent)...)
	}

	return allChanges
}

// String renders a change for logs and text output.
func (c *EventChange) String() string {
	if c.ChangeType == ChangeNew {
		return fmt.Sprintf("new: %s", c.NewValue)
	}
	return fmt.Sprintf("%s: %s -> %s", c.ChangeType, c.OldValue, c.NewValue)
}
