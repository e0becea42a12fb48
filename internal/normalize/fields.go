package normalize

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/gigmerge/internal/event"
)

// DefaultLocation is used for unknown venues with no location.
const DefaultLocation = "Boston"

// UnknownVenueName is shown for unknown venues with no name.
const UnknownVenueName = "Unknown Venue"

var locations = map[string]string{
	"boston":         "Boston",
	"boston, ma":     "Boston",
	"cambridge":      "Cambridge",
	"cambridge, ma":  "Cambridge",
	"somerville":     "Somerville",
	"somerville, ma": "Somerville",
	"allston":        "Allston",
	"allston, ma":    "Allston",
	"brighton":       "Brighton",
	"brighton, ma":   "Brighton",
	"jamaica plain":  "Jamaica Plain",
	"jp":             "Jamaica Plain",
	"brookline":      "Brookline",
	"medford":        "Medford",
	"worcester":      "Worcester",
	"worcester, ma":  "Worcester",
	"providence":     "Providence, RI",
	"providence, ri": "Providence, RI",
	"portland, me":   "Portland, ME",
}

// Location canonicalizes a free-text city for venues missing from the
// registry.
func Location(raw string) string {
	s := CleanText(raw)
	if s == "" {
		return DefaultLocation
	}
	if loc, ok := locations[strings.ToLower(s)]; ok {
		return loc
	}
	return s
}

// Age maps a free-text age requirement to one of the closed set of
// tokens. The second result is false for non-empty strings that matched
// no rule and fell back to all-ages.
func Age(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return event.AgeAllAges, true
	case strings.Contains(s, "all"), s == "aa", s == "a/a":
		return event.AgeAllAges, true
	case strings.Contains(s, "21"):
		return event.Age21, true
	case strings.Contains(s, "18"):
		return event.Age18, true
	}
	return event.AgeAllAges, false
}

// Flags trims, deduplicates and sorts flag tokens.
func Flags(raw []string) []string {
	return tokenSet(raw, strings.TrimSpace)
}

// GenreTags lowercases, deduplicates and sorts genre tags.
func GenreTags(raw []string) []string {
	return tokenSet(raw, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func tokenSet(raw []string, clean func(string) string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t := clean(r)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
