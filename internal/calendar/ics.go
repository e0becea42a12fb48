package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/normalize"
)

// TimeZone is the zone show times are written in.
const TimeZone = "America/New_York"

// ShowLength is how long each calendar entry lasts.
const ShowLength = 3 * time.Hour

const prodID = "-//gigmerge//gigmerge//EN"

// now is swapped in tests.
var now = time.Now

// GenerateICS generates an iCalendar (.ics) file for one show. Shows
// without a date produce an empty calendar.
func GenerateICS(evt *event.Event) string {
	return GenerateFeed([]*event.Event{evt})
}

// GenerateFeed generates one calendar holding every dated show.
func GenerateFeed(events []*event.Event) string {
	var ics strings.Builder
	stamp := formatICSTime(now())

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	writeLine(&ics, "PRODID:"+prodID)
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	writeLine(&ics, "X-WR-CALNAME:Boston shows")
	writeLine(&ics, "X-WR-TIMEZONE:"+TimeZone)

	for _, evt := range events {
		if evt == nil || evt.Date.IsZero() {
			continue
		}
		writeEvent(&ics, evt, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, stamp string) {
	start := StartTime(evt)
	end := start.Add(ShowLength)

	ics.WriteString("BEGIN:VEVENT\r\n")
	writeLine(ics, fmt.Sprintf("UID:%s@gigmerge", evt.ID))
	writeLine(ics, "DTSTAMP:"+stamp)
	writeLine(ics, fmt.Sprintf("DTSTART;TZID=%s:%s", TimeZone, formatLocalTime(start)))
	writeLine(ics, fmt.Sprintf("DTEND;TZID=%s:%s", TimeZone, formatLocalTime(end)))
	writeLine(ics, "SUMMARY:"+escapeICS(Summary(evt)))
	writeLine(ics, "DESCRIPTION:"+escapeICS(description(evt)))

	location := evt.VenueName
	if evt.VenueLocation != "" {
		location = fmt.Sprintf("%s, %s", evt.VenueName, evt.VenueLocation)
	}
	writeLine(ics, "LOCATION:"+escapeICS(location))

	if evt.SourceURL != "" {
		writeLine(ics, "URL:"+evt.SourceURL)
	}
	if len(evt.GenreTags) > 0 {
		tags := make([]string, len(evt.GenreTags))
		for i, tag := range evt.GenreTags {
			tags[i] = escapeICS(tag)
		}
		writeLine(ics, "CATEGORIES:"+strings.Join(tags, ","))
	}

	status := "CONFIRMED"
	for _, flag := range evt.Flags {
		if flag == "cancelled" || flag == "canceled" {
			status = "CANCELLED"
		}
	}
	writeLine(ics, "STATUS:"+status)
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// StartTime is the show's day at its listed time, 8pm when unparseable.
func StartTime(evt *event.Event) time.Time {
	minutes, ok := normalize.Minutes(evt.Time)
	if !ok {
		minutes, _ = normalize.Minutes(event.DefaultTime)
	}
	day := event.StartOfDay(evt.Date)
	return day.Add(time.Duration(minutes) * time.Minute)
}

// Summary reads "Headliner w/ Support, Support @ Venue".
func Summary(evt *event.Event) string {
	summary := evt.Headliner()
	if support := evt.Support(); len(support) > 0 {
		summary += " w/ " + strings.Join(support, ", ")
	}
	if evt.VenueName != "" {
		summary += " @ " + evt.VenueName
	}
	return summary
}

func description(evt *event.Event) string {
	lines := []string{fmt.Sprintf("%s, %s", evt.DateDisplay(), evt.Time)}
	if price := evt.PriceDisplay(); price != "" {
		lines = append(lines, "Tickets: "+price)
	}
	if evt.AgeRequirement != "" {
		lines = append(lines, "Ages: "+evt.AgeRequirement)
	}
	if len(evt.Flags) > 0 {
		lines = append(lines, "Notes: "+strings.Join(evt.Flags, ", "))
	}
	lines = append(lines, "Sources: "+strings.Join(evt.Sources(), ", "))
	return strings.Join(lines, "\n")
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatLocalTime formats a wall-clock time for a TZID property
func formatLocalTime(t time.Time) string {
	return t.Format("20060102T150405")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine folds content lines longer than 75 octets, never splitting a
// UTF-8 sequence.
func writeLine(ics *strings.Builder, line string) {
	const limit = 75
	first := true
	for len(line) > 0 {
		room := limit
		if !first {
			room = limit - 1 // leading space
		}
		if len(line) <= room {
			if !first {
				ics.WriteString(" ")
			}
			ics.WriteString(line)
			break
		}
		cut := room
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if !first {
			ics.WriteString(" ")
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n")
		line = line[cut:]
		first = false
	}
	ics.WriteString("\r\n")
}
