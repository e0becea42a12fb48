package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/gigmerge/internal/event"
)

func fixedNow(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.Date(2026, time.March, 1, 17, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
}

func testShow() *event.Event {
	evt := event.New(time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), "middleeast_down", "Middle East Downstairs", "Cambridge",
		[]string{"Converge", "Cave In", "Pile"}, "merged:scrape:do617+ticketmaster")
	evt.Time = "7:30pm"
	evt.PriceAdvance = event.Price(25)
	evt.PriceDoor = event.Price(30)
	evt.AgeRequirement = event.Age18
	evt.Flags = []string{"sold-out"}
	evt.GenreTags = []string{"hardcore", "metal"}
	evt.SourceURL = "https://tickets.example.com/converge"
	return evt
}

func TestGenerateICS(t *testing.T) {
	fixedNow(t)
	evt := testShow()

	ics := GenerateICS(evt)

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//gigmerge//gigmerge//EN",
		"BEGIN:VEVENT",
		"UID:" + evt.ID + "@gigmerge",
		"DTSTAMP:20260301T170000Z",
		"DTSTART;TZID=America/New_York:20260314T193000",
		"DTEND;TZID=America/New_York:20260314T223000",
		"SUMMARY:Converge w/ Cave In\\, Pile @ Middle East Downstairs",
		"LOCATION:Middle East Downstairs\\, Cambridge",
		"URL:https://tickets.example.com/converge",
		"CATEGORIES:hardcore,metal",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s\n%s", field, ics)
		}
	}

	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateICS_Description(t *testing.T) {
	fixedNow(t)
	ics := unfold(GenerateICS(testShow()))

	want := "DESCRIPTION:Sat Mar 14\\, 7:30pm\\nTickets: $25/$30\\nAges: 18+\\nNotes: sold-out\\nSources: scrape:do617\\, ticketmaster"
	if !strings.Contains(ics, want) {
		t.Errorf("description mismatch, want %q in\n%s", want, ics)
	}
}

func TestGenerateICS_DefaultTime(t *testing.T) {
	fixedNow(t)
	evt := testShow()
	evt.Time = "sometime"

	if ics := GenerateICS(evt); !strings.Contains(ics, "DTSTART;TZID=America/New_York:20260314T200000") {
		t.Errorf("unparseable time should start at 8pm:\n%s", ics)
	}
}

func TestGenerateICS_Undated(t *testing.T) {
	fixedNow(t)
	evt := testShow()
	evt.Date = time.Time{}

	ics := GenerateICS(evt)
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("undated show should not produce a VEVENT")
	}
	if !strings.Contains(ics, "BEGIN:VCALENDAR") {
		t.Error("calendar wrapper should still be present")
	}
}

func TestGenerateICS_Cancelled(t *testing.T) {
	fixedNow(t)
	evt := testShow()
	evt.Flags = []string{"cancelled"}

	if ics := GenerateICS(evt); !strings.Contains(ics, "STATUS:CANCELLED") {
		t.Error("cancelled flag should set STATUS:CANCELLED")
	}
}

func TestGenerateICS_SpecialCharacters(t *testing.T) {
	fixedNow(t)
	evt := testShow()
	evt.Acts = []string{"Band; With, Special\\Characters\nAnd Newlines"}

	ics := GenerateICS(evt)

	if strings.Contains(ics, "Band; With") {
		t.Error("Special characters should be escaped in SUMMARY")
	}
	if !strings.Contains(unfold(ics), `SUMMARY:Band\; With\, Special\\Characters\nAnd Newlines @ Middle East Downstairs`) {
		t.Errorf("escaped summary missing:\n%s", ics)
	}
}

func TestGenerateFeed(t *testing.T) {
	fixedNow(t)
	a := testShow()
	b := event.New(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), "royale", "Royale", "Boston", []string{"Pile"}, "ticketmaster")
	undated := event.New(time.Time{}, "royale", "Royale", "Boston", []string{"Nobody"}, "ticketmaster")

	ics := GenerateFeed([]*event.Event{a, nil, undated, b})

	if n := strings.Count(ics, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("feed has %d events, want 2", n)
	}
	if n := strings.Count(ics, "BEGIN:VCALENDAR"); n != 1 {
		t.Errorf("feed has %d calendars, want 1", n)
	}
	if !strings.Contains(ics, "UID:"+b.ID+"@gigmerge") {
		t.Error("feed missing second show")
	}
}

func TestWriteLine_Folds(t *testing.T) {
	var b strings.Builder
	long := "DESCRIPTION:" + strings.Repeat("é", 60)
	writeLine(&b, long)

	out := b.String()
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		if len(line) > 75 {
			t.Errorf("line longer than 75 octets: %d", len(line))
		}
	}
	if unfold(out) != long+"\r\n" {
		t.Errorf("unfolded line does not round trip: %q", unfold(out))
	}
}

func TestStartTime(t *testing.T) {
	evt := testShow()
	evt.Time = "10pm"
	want := time.Date(2026, time.March, 14, 22, 0, 0, 0, time.UTC)
	if got := StartTime(evt); !got.Equal(want) {
		t.Errorf("StartTime() = %v, want %v", got, want)
	}
}

func unfold(s string) string {
	return strings.ReplaceAll(s, "\r\n ", "")
}
