package dedupe

import (
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/fuzzy"
	"github.com/pfrederiksen/gigmerge/internal/logger"
	"github.com/pfrederiksen/gigmerge/internal/normalize"
)

// Reason records why two records were judged the same show.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonHeadliner Reason = "headliner"
	ReasonMajority  Reason = "majority"
)

// DetectOptions tunes duplicate detection. Thresholds are similarity
// ratios on a 0-100 scale.
type DetectOptions struct {
	VenueThreshold     float64       `koanf:"venue_threshold" validate:"gte=0,lte=100"`
	HeadlinerThreshold float64       `koanf:"headliner_threshold" validate:"gte=0,lte=100"`
	SupportThreshold   float64       `koanf:"support_threshold" validate:"gte=0,lte=100"`
	TimeTolerance      time.Duration `koanf:"time_tolerance" validate:"gte=0"`

	// MinChecks is how many secondary attributes must be comparable before
	// a majority of them can link two records.
	MinChecks int `koanf:"min_checks" validate:"gte=1"`
}

// DefaultDetectOptions returns the standard thresholds.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		VenueThreshold:     80,
		HeadlinerThreshold: 80,
		SupportThreshold:   80,
		TimeTolerance:      30 * time.Minute,
		MinChecks:          3,
	}
}

// Detector groups one day's records into clusters of the same show.
type Detector struct {
	opts DetectOptions
}

// NewDetector returns a Detector using opts.
func NewDetector(opts DetectOptions) *Detector {
	return &Detector{opts: opts}
}

var (
	leadingThe  = regexp.MustCompile(`^the\s+`)
	trailingThe = regexp.MustCompile(`,\s*the$`)
	citySuffix  = regexp.MustCompile(`\s*[-–,]\s*(boston|cambridge|somerville|brookline|allston|brighton)\b.*$`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// ComparisonKey reduces a venue or act name to the form used for
// similarity scoring.
func ComparisonKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = leadingThe.ReplaceAllString(s, "")
	s = trailingThe.ReplaceAllString(s, "")
	s = citySuffix.ReplaceAllString(s, "")
	s = punctuation.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// profile holds the comparison keys of one record, computed once.
type profile struct {
	evt       *event.Event
	day       string
	venueID   string
	venue     string
	headliner string
	support   []string
}

func newProfile(evt *event.Event) *profile {
	venueText := evt.VenueName
	if venueText == "" {
		venueText = evt.VenueID
	}
	p := &profile{
		evt:       evt,
		day:       evt.DayKey(),
		venueID:   strings.ToLower(evt.VenueID),
		venue:     ComparisonKey(venueText),
		headliner: ComparisonKey(evt.Headliner()),
	}
	for _, act := range evt.Support() {
		p.support = append(p.support, ComparisonKey(act))
	}
	return p
}

// Duplicates reports whether a and b describe the same show and why.
func (d *Detector) Duplicates(a, b *event.Event) (bool, Reason) {
	return d.compare(newProfile(a), newProfile(b))
}

// Detect partitions records into clusters. Clusters are ordered by their
// lowest input index and members keep input order. Records on different
// days never share a cluster.
func (d *Detector) Detect(records []*event.Event) [][]*event.Event {
	if len(records) == 0 {
		return nil
	}

	profiles := make([]*profile, len(records))
	for i, evt := range records {
		profiles[i] = newProfile(evt)
	}

	set := NewDisjointSet(len(records))
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			if set.Connected(i, j) {
				continue
			}
			if dup, reason := d.compare(profiles[i], profiles[j]); dup {
				set.Union(i, j)
				logger.Debug("Duplicate detected", logger.Fields{
					"reason":  string(reason),
					"day":     profiles[i].day,
					"venue":   records[i].VenueID,
					"first":   records[i].Headliner(),
					"second":  records[j].Headliner(),
					"sources": records[i].Source + "," + records[j].Source,
				})
			}
		}
	}

	groups := set.Groups()
	clusters := make([][]*event.Event, len(groups))
	for g, members := range groups {
		cluster := make([]*event.Event, len(members))
		for k, idx := range members {
			cluster[k] = records[idx]
		}
		clusters[g] = cluster
	}
	return clusters
}

func (d *Detector) compare(a, b *profile) (bool, Reason) {
	if a.day != b.day {
		return false, ReasonNone
	}

	venueSimilar := fuzzy.AtLeast(a.venue, b.venue, d.opts.VenueThreshold)
	if !venueSimilar && a.venueID != "" && a.venueID == b.venueID {
		venueSimilar = true
	}
	if !venueSimilar {
		return false, ReasonNone
	}

	if a.headliner != "" && b.headliner != "" && fuzzy.AtLeast(a.headliner, b.headliner, d.opts.HeadlinerThreshold) {
		return true, ReasonHeadliner
	}

	checks, matches := d.vote(a, b)
	if checks >= d.opts.MinChecks && matches >= checks/2+1 {
		return true, ReasonMajority
	}
	return false, ReasonNone
}

// vote compares the secondary attributes. A price counts as a check when
// either record lists it; the other attributes only when both do.
func (d *Detector) vote(a, b *profile) (checks, matches int) {
	ea, eb := a.evt, b.evt

	if ea.Time != "" && eb.Time != "" {
		checks++
		if d.timesSimilar(ea.Time, eb.Time) {
			matches++
		}
	}

	for _, pair := range [][2]*int{
		{ea.PriceAdvance, eb.PriceAdvance},
		{ea.PriceDoor, eb.PriceDoor},
	} {
		if pair[0] == nil && pair[1] == nil {
			continue
		}
		checks++
		if pair[0] != nil && pair[1] != nil && *pair[0] == *pair[1] {
			matches++
		}
	}

	if ea.AgeRequirement != "" && eb.AgeRequirement != "" {
		checks++
		if ea.AgeRequirement == eb.AgeRequirement {
			matches++
		}
	}

	if len(a.support) > 0 && len(b.support) > 0 {
		checks++
		if d.supportOverlaps(a.support, b.support) {
			matches++
		}
	}
	return checks, matches
}

func (d *Detector) timesSimilar(a, b string) bool {
	ma, okA := normalize.Minutes(a)
	mb, okB := normalize.Minutes(b)
	if !okA || !okB {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	diff := ma - mb
	if diff < 0 {
		diff = -diff
	}
	return time.Duration(diff)*time.Minute <= d.opts.TimeTolerance
}

func (d *Detector) supportOverlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if fuzzy.AtLeast(x, y, d.opts.SupportThreshold) {
				return true
			}
		}
	}
	return false
}
