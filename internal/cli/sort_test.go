package cli

import (
	"testing"
	"time"

	"github.com/pfrederiksen/gigmerge/internal/event"
)

func show(day int, clock, venueID, headliner string) *event.Event {
	var date time.Time
	if day > 0 {
		date = time.Date(2027, time.March, day, 0, 0, 0, 0, time.UTC)
	}
	evt := event.New(date, venueID, venueID, "Boston", []string{headliner}, "ticketmaster")
	evt.Time = clock
	return evt
}

func headliners(events []*event.Event) []string {
	out := make([]string, len(events))
	for i, evt := range events {
		out[i] = evt.Headliner()
	}
	return out
}

func TestSortEvents(t *testing.T) {
	tests := []struct {
		name  string
		order SortOrder
		want  []string
	}{
		{"date", SortByDate, []string{"Pile", "Converge", "Cave In", "Zebra", "Undated"}},
		{"venue", SortByVenue, []string{"Undated", "Pile", "Converge", "Cave In", "Zebra"}},
		{"band", SortByBand, []string{"Cave In", "Converge", "Pile", "Undated", "Zebra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []*event.Event{
				show(14, "9pm", "royale", "Zebra"),
				show(13, "10pm", "paradise", "Converge"),
				show(0, "", "brighton", "Undated"),
				show(14, "7pm", "paradise", "Cave In"),
				show(13, "7:30pm", "hob", "Pile"),
			}
			sortEvents(events, tt.order)

			got := headliners(events)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("sortEvents(%s) = %v, want %v", tt.order, got, tt.want)
				}
			}
		})
	}
}

func TestCompareByDate_UnparseableTimeLast(t *testing.T) {
	early := show(13, "8pm", "paradise", "B")
	vague := show(13, "doors at dusk", "paradise", "A")

	if !compareByDate(early, vague) {
		t.Error("show with a known time should sort before one without")
	}
	if compareByDate(vague, early) {
		t.Error("compareByDate is not antisymmetric")
	}
}

func TestParseSortOrder(t *testing.T) {
	for _, in := range []string{"date", "VENUE", " band "} {
		if _, err := parseSortOrder(in); err != nil {
			t.Errorf("parseSortOrder(%q) error = %v", in, err)
		}
	}
	if _, err := parseSortOrder("price"); err == nil {
		t.Error("parseSortOrder(price) expected error")
	}
}
