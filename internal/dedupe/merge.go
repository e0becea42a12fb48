package dedupe

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/fuzzy"
	"github.com/pfrederiksen/gigmerge/internal/logger"
	"github.com/pfrederiksen/gigmerge/internal/normalize"
)

// UnlistedPriority ranks sources missing from the priority table.
const UnlistedPriority = 99

// MergeOptions tunes how a cluster collapses into one record.
type MergeOptions struct {
	// ActThreshold is the ratio at which two act names are the same act.
	ActThreshold float64 `koanf:"act_threshold" validate:"gte=0,lte=100"`

	// SourcePriority breaks richness ties; lower wins.
	SourcePriority map[string]int `koanf:"source_priority"`
}

// DefaultSourcePriority ranks the primary ticketing API first, then the
// most trusted independent listings.
func DefaultSourcePriority() map[string]int {
	return map[string]int{
		"ticketmaster":           1,
		"scrape:safe_in_a_crowd": 2,
		"scrape:middle_east":     3,
		"scrape:do617":           4,
	}
}

// DefaultMergeOptions returns the standard merge settings.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{
		ActThreshold:   90,
		SourcePriority: DefaultSourcePriority(),
	}
}

// Merger collapses clusters.
type Merger struct {
	opts MergeOptions
}

// NewMerger returns a Merger using opts.
func NewMerger(opts MergeOptions) *Merger {
	if opts.SourcePriority == nil {
		opts.SourcePriority = DefaultSourcePriority()
	}
	return &Merger{opts: opts}
}

// Richness scores how much detail a record carries.
func Richness(evt *event.Event) int {
	score := 0

	if headliner := evt.Headliner(); headliner != "" {
		score += utf8.RuneCountInString(headliner) / 10
		if strings.ContainsAny(headliner, ":-") || strings.Contains(strings.ToLower(headliner), "tour") {
			score += 5
		}
	}

	score += 2 * len(evt.Acts)
	if evt.PriceAdvance != nil {
		score += 3
	}
	if evt.PriceDoor != nil {
		score += 3
	}
	score += 4 * len(evt.Flags)
	if evt.AgeRequirement != "" && evt.AgeRequirement != event.AgeAllAges {
		score += 2
	}
	if evt.Time != "" && evt.Time != event.DefaultTime {
		score += 2
	}
	score += len(evt.GenreTags)
	if evt.SourceURL != "" {
		score += 2
	}
	return score
}

func (m *Merger) priority(source string) int {
	if p, ok := m.opts.SourcePriority[source]; ok {
		return p
	}
	return UnlistedPriority
}

// Rank orders a cluster from best merge base to worst: richness, then
// source priority, then the record text itself.
func (m *Merger) Rank(cluster []*event.Event) []*event.Event {
	type ranked struct {
		evt      *event.Event
		richness int
		priority int
		key      string
	}
	rs := make([]ranked, len(cluster))
	for i, evt := range cluster {
		rs[i] = ranked{evt: evt, richness: Richness(evt), priority: m.priority(evt.Source), key: contentKey(evt)}
	}

	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.richness != b.richness {
			return a.richness > b.richness
		}
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if a.evt.Source != b.evt.Source {
			return a.evt.Source < b.evt.Source
		}
		if ha, hb := a.evt.Headliner(), b.evt.Headliner(); ha != hb {
			return ha < hb
		}
		if a.evt.SourceURL != b.evt.SourceURL {
			return a.evt.SourceURL < b.evt.SourceURL
		}
		return a.key < b.key
	})

	out := make([]*event.Event, len(rs))
	for i, r := range rs {
		out[i] = r.evt
	}
	return out
}

// contentKey orders records that tie on everything else, so the rank never
// depends on input order.
func contentKey(evt *event.Event) string {
	price := func(p *int) string {
		if p == nil {
			return "-"
		}
		return strconv.Itoa(*p)
	}
	return strings.Join([]string{
		evt.ID,
		evt.Date.Format(time.RFC3339),
		evt.Time,
		evt.AgeRequirement,
		price(evt.PriceAdvance),
		price(evt.PriceDoor),
		strings.Join(evt.Acts, "\x1f"),
		strings.Join(evt.Flags, "\x1f"),
		strings.Join(evt.GenreTags, "\x1f"),
		evt.VenueID,
		evt.VenueName,
		evt.VenueLocation,
	}, "\x1e")
}

// Merge collapses a cluster into one record. A singleton is returned
// unchanged; larger clusters produce a new record and leave members alone.
func (m *Merger) Merge(cluster []*event.Event) *event.Event {
	switch len(cluster) {
	case 0:
		return nil
	case 1:
		return cluster[0]
	}

	ranked := m.Rank(cluster)
	base := ranked[0].Clone()
	sources := []string{base.Source}

	for _, other := range ranked[1:] {
		base.Acts = m.mergeActs(base.Acts, other.Acts)

		if base.PriceAdvance == nil && other.PriceAdvance != nil {
			base.PriceAdvance = event.Price(*other.PriceAdvance)
		}
		if base.PriceDoor == nil && other.PriceDoor != nil {
			base.PriceDoor = event.Price(*other.PriceDoor)
		}

		base.Flags = normalize.Flags(append(base.Flags, other.Flags...))
		base.GenreTags = normalize.GenreTags(append(base.GenreTags, other.GenreTags...))

		if isDefaultTime(base.Time) && !isDefaultTime(other.Time) {
			base.Time = other.Time
		}
		if isDefaultAge(base.AgeRequirement) && !isDefaultAge(other.AgeRequirement) {
			base.AgeRequirement = other.AgeRequirement
		}

		if base.SourceURL == "" {
			base.SourceURL = other.SourceURL
		}
		if base.VenueName == "" {
			base.VenueName = other.VenueName
		}
		if base.VenueLocation == "" {
			base.VenueLocation = other.VenueLocation
		}
		sources = append(sources, other.Source)
	}

	base.Source = event.JoinSources(sources)
	base.RefreshIdentity()

	logger.Debug("Merged cluster", logger.Fields{
		"size":      len(cluster),
		"base":      ranked[0].Source,
		"richness":  Richness(ranked[0]),
		"headliner": base.Headliner(),
		"source":    base.Source,
	})
	return base
}

// mergeActs folds incoming into acts. A spelling of an act already listed
// replaces it only when it is more than five characters longer.
func (m *Merger) mergeActs(acts, incoming []string) []string {
	out := make([]string, len(acts), len(acts)+len(incoming))
	copy(out, acts)

	for _, act := range incoming {
		if strings.TrimSpace(act) == "" {
			continue
		}
		matched := false
		for i, existing := range out {
			if !m.sameAct(existing, act) {
				continue
			}
			matched = true
			if utf8.RuneCountInString(act) > utf8.RuneCountInString(existing)+5 {
				out[i] = act
			}
			break
		}
		if !matched {
			out = append(out, act)
		}
	}
	return out
}

func (m *Merger) sameAct(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if fuzzy.AtLeast(la, lb, m.opts.ActThreshold) {
		return true
	}
	return hasSubtitle(la, lb) || hasSubtitle(lb, la)
}

// hasSubtitle reports whether long is short followed by a ":", "-" or "("
// subtitle, as in "band: the anniversary tour".
func hasSubtitle(long, short string) bool {
	if short == "" || len(long) <= len(short) || !strings.HasPrefix(long, short) {
		return false
	}
	rest := strings.TrimSpace(long[len(short):])
	for _, marker := range []string{":", "-", "–", "("} {
		if strings.HasPrefix(rest, marker) {
			return true
		}
	}
	return false
}

func isDefaultTime(t string) bool {
	return t == "" || t == event.DefaultTime
}

func isDefaultAge(a string) bool {
	return a == "" || a == event.AgeAllAges
}
