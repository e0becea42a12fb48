package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/gigmerge/internal/event"
)

func TestRichness(t *testing.T) {
	plain := listing(24, "paradise", "Paradise Rock Club", "ticketmaster", "Converge")
	assert.Equal(t, 2, Richness(plain))

	rich := listing(24, "paradise", "Paradise Rock Club", "ticketmaster", "Converge - Jane Doe Tour", "Cave In")
	rich.PriceAdvance = event.Price(25)
	rich.PriceDoor = event.Price(30)
	rich.Flags = []string{"sold-out"}
	rich.AgeRequirement = event.Age18
	rich.Time = "7pm"
	rich.GenreTags = []string{"hardcore", "metal"}
	rich.SourceURL = "https://example.com/converge"

	// 24/10 + 5 + 2*2 + 3 + 3 + 4 + 2 + 2 + 2 + 2
	assert.Equal(t, 29, Richness(rich))
}

func TestMerge_Singleton(t *testing.T) {
	evt := listing(24, "paradise", "Paradise Rock Club", "ticketmaster", "Converge")
	m := NewMerger(DefaultMergeOptions())

	assert.Same(t, evt, m.Merge([]*event.Event{evt}))
	assert.Nil(t, m.Merge(nil))
}

func TestMerge_FillsAndUnions(t *testing.T) {
	base := listing(24, "paradise", "Paradise Rock Club", "ticketmaster", "Converge", "Cave In")
	base.PriceAdvance = event.Price(25)
	base.Flags = []string{"recommended", "sold-out", "no-ins-outs"}
	base.GenreTags = []string{"hardcore"}
	base.SourceURL = "https://tickets.example.com/1"

	other := listing(24, "paradise", "Paradise", "scrape:do617", "converge", "Pile")
	other.PriceDoor = event.Price(30)
	other.Flags = []string{"pit-warning", "sold-out"}
	other.GenreTags = []string{"metal"}
	other.Time = "7:30pm"
	other.AgeRequirement = event.Age18

	m := NewMerger(DefaultMergeOptions())
	require.Greater(t, Richness(base), Richness(other))

	merged := m.Merge([]*event.Event{other, base})

	assert.Equal(t, []string{"Converge", "Cave In", "Pile"}, merged.Acts)
	require.NotNil(t, merged.PriceAdvance)
	require.NotNil(t, merged.PriceDoor)
	assert.Equal(t, 25, *merged.PriceAdvance)
	assert.Equal(t, 30, *merged.PriceDoor)
	assert.Equal(t, []string{"no-ins-outs", "pit-warning", "recommended", "sold-out"}, merged.Flags)
	assert.Equal(t, []string{"hardcore", "metal"}, merged.GenreTags)
	assert.Equal(t, "7:30pm", merged.Time)
	assert.Equal(t, event.Age18, merged.AgeRequirement)
	assert.Equal(t, "https://tickets.example.com/1", merged.SourceURL)
	assert.Equal(t, "merged:scrape:do617+ticketmaster", merged.Source)
	assert.Equal(t, event.GenerateID("2026-01-24", "paradise", "Converge"), merged.ID)

	// Members are untouched.
	assert.Equal(t, []string{"Converge", "Cave In"}, base.Acts)
	assert.Nil(t, base.PriceDoor)
	assert.Equal(t, "ticketmaster", base.Source)
}

func TestMerge_ActSpellings(t *testing.T) {
	tests := []struct {
		name     string
		base     []string
		incoming []string
		want     []string
	}{
		{
			name:     "near spelling is not added",
			base:     []string{"Dropkick Murphys"},
			incoming: []string{"Dropkick Murphy's"},
			want:     []string{"Dropkick Murphys"},
		},
		{
			name:     "much longer spelling replaces",
			base:     []string{"Converge", "Cave In"},
			incoming: []string{"Converge (Jane Doe 20th anniversary)"},
			want:     []string{"Converge (Jane Doe 20th anniversary)", "Cave In"},
		},
		{
			name:     "shorter spelling keeps the detailed one",
			base:     []string{"Converge: Jane Doe Tour"},
			incoming: []string{"Converge"},
			want:     []string{"Converge: Jane Doe Tour"},
		},
		{
			name:     "different act is appended",
			base:     []string{"Converge"},
			incoming: []string{"Cave In", ""},
			want:     []string{"Converge", "Cave In"},
		},
		{
			name:     "prefix without subtitle marker is a different act",
			base:     []string{"Pile"},
			incoming: []string{"Piles of Bones"},
			want:     []string{"Pile", "Piles of Bones"},
		},
	}

	m := NewMerger(DefaultMergeOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.mergeActs(tt.base, tt.incoming))
		})
	}
}

func TestRank_PriorityBreaksTies(t *testing.T) {
	do617 := listing(24, "paradise", "Paradise Rock Club", "scrape:do617", "Converge")
	tm := listing(24, "paradise", "Paradise Rock Club", "ticketmaster", "Converge")
	blog := listing(24, "paradise", "Paradise Rock Club", "rss:bostonhassle", "Converge")
	sic := listing(24, "paradise", "Paradise Rock Club", "scrape:safe_in_a_crowd", "Converge")

	ranked := NewMerger(DefaultMergeOptions()).Rank([]*event.Event{blog, do617, tm, sic})
	assert.Equal(t, []*event.Event{tm, sic, do617, blog}, ranked)
}

func TestRank_CustomPriority(t *testing.T) {
	tm := listing(24, "paradise", "Paradise Rock Club", "ticketmaster", "Converge")
	blog := listing(24, "paradise", "Paradise Rock Club", "rss:bostonhassle", "Converge")

	m := NewMerger(MergeOptions{ActThreshold: 90, SourcePriority: map[string]int{"rss:bostonhassle": 1}})
	ranked := m.Rank([]*event.Event{tm, blog})
	assert.Same(t, blog, ranked[0])
}

func TestMerge_NestedComposite(t *testing.T) {
	m := NewMerger(DefaultMergeOptions())
	a := listing(24, "paradise", "Paradise Rock Club", "ticketmaster", "Converge")
	b := listing(24, "paradise", "Paradise Rock Club", "scrape:do617", "Converge")
	c := listing(24, "paradise", "Paradise Rock Club", "scrape:middle_east", "Converge")

	first := m.Merge([]*event.Event{a, b})
	again := m.Merge([]*event.Event{first, c})
	assert.Equal(t, "merged:scrape:do617+scrape:middle_east+ticketmaster", again.Source)
}
