package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/pfrederiksen/gigmerge/internal/calendar"
	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/pipeline"
	"github.com/pfrederiksen/gigmerge/internal/venue"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time                 `json:"checked_at"`
	Venue      string                    `json:"venue,omitempty"`
	Filter     string                    `json:"filter,omitempty"`
	Events     []*event.Event            `json:"events"`
	EventCount int                       `json:"event_count"`
	ByVenue    map[string][]*event.Event `json:"by_venue,omitempty"`
	Changes    []*event.EventChange      `json:"changes,omitempty"`
	ShowAll    bool                      `json:"show_all,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateFeed(result.Events))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	label := "new"
	prefix := "NEW: "
	if result.ShowAll {
		label = "shows"
		prefix = ""
	}

	if result.EventCount == 0 {
		if result.ShowAll {
			fmt.Fprintln(w, "No shows found.")
		} else {
			fmt.Fprintln(w, "No new shows found.")
		}
		return nil
	}

	if result.Filter != "" {
		fmt.Fprintf(w, "Filter: %s\n", result.Filter)
	}

	if len(result.ByVenue) > 0 {
		ids := make([]string, 0, len(result.ByVenue))
		for id := range result.ByVenue {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			shows := result.ByVenue[id]
			if len(shows) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s (%d %s):\n", venueTitle(id, shows[0]), len(shows), label)
			for _, evt := range shows {
				fmt.Fprintf(w, "  %s%s %s: %s\n", prefix, evt.DateDisplay(), evt.Time, actLine(evt))
				if verbose {
					writeDetails(w, "       ", evt)
				}
			}
		}
		fmt.Fprintf(w, "\nTotal: %d %s across %d venues\n", result.EventCount, label, len(result.ByVenue))
	} else {
		for _, evt := range result.Events {
			fmt.Fprintf(w, "%s%s %s @ %s: %s\n", prefix, evt.DateDisplay(), evt.Time, evt.VenueName, actLine(evt))
			if verbose {
				writeDetails(w, "     ", evt)
			}
		}
		fmt.Fprintf(w, "\nTotal: %d %s\n", result.EventCount, label)
	}

	if len(result.Changes) > 0 {
		fmt.Fprintf(w, "\nChanges since last check (%d):\n", len(result.Changes))
		for _, c := range result.Changes {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
	return nil
}

func writeDetails(w io.Writer, indent string, evt *event.Event) {
	fmt.Fprintf(w, "%sID: %s\n", indent, evt.ID)
	if evt.VenueLocation != "" {
		fmt.Fprintf(w, "%sWhere: %s\n", indent, evt.VenueLocation)
	}
	fmt.Fprintf(w, "%sAge: %s\n", indent, evt.AgeRequirement)
	if price := evt.PriceDisplay(); price != "" {
		fmt.Fprintf(w, "%sPrice: %s\n", indent, price)
	}
	if len(evt.Flags) > 0 {
		fmt.Fprintf(w, "%sFlags: %s\n", indent, strings.Join(evt.Flags, ", "))
	}
	fmt.Fprintf(w, "%sSource: %s\n", indent, evt.Source)
	if evt.SourceURL != "" {
		fmt.Fprintf(w, "%sURL: %s\n", indent, evt.SourceURL)
	}
}

// actLine renders "Headliner w/ Support, Support".
func actLine(evt *event.Event) string {
	line := evt.Headliner()
	if support := evt.Support(); len(support) > 0 {
		line += " w/ " + strings.Join(support, ", ")
	}
	return line
}

func venueTitle(id string, sample *event.Event) string {
	if entry, ok := venue.Lookup(id); ok {
		return entry.Name
	}
	if sample.VenueName != "" {
		return sample.VenueName
	}
	return id
}

// writeStats prints the outcome of a pipeline run.
func writeStats(w io.Writer, stats pipeline.Stats, format OutputFormat, output string) error {
	if format == FormatJSON {
		return writeJSON(w, struct {
			pipeline.Stats
			Path string `json:"path"`
		}{stats, output})
	}

	if stats.Undecodable > 0 {
		fmt.Fprintf(w, "Skipped %d undecodable records\n", stats.Undecodable)
	}
	fmt.Fprintf(w, "Read %d records (%d rejected, %d recovered, %d unknown venues)\n",
		stats.Input, stats.Rejected, stats.Recovered, stats.UnknownVenues)
	if stats.Past > 0 {
		fmt.Fprintf(w, "Dropped %d past shows\n", stats.Past)
	}
	fmt.Fprintf(w, "Merged %d duplicates in %d clusters across %d days\n", stats.Merged, stats.Clusters, stats.Days)
	fmt.Fprintf(w, "Wrote %d shows to %s\n", stats.Output, output)
	return nil
}
