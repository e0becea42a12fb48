package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/gigmerge/internal/dedupe"
	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/logger"
	"github.com/pfrederiksen/gigmerge/internal/metrics"
	"github.com/pfrederiksen/gigmerge/internal/normalize"
)

// Options configures a Pipeline.
type Options struct {
	Detect dedupe.DetectOptions
	Merge  dedupe.MergeOptions

	// Workers bounds how many days are deduplicated at once. Zero means
	// GOMAXPROCS.
	Workers int

	// DropPast removes shows whose day is before Now.
	DropPast bool
	Now      func() time.Time

	// Venues resolves venue ids; nil means the default registry.
	Venues normalize.VenueResolver

	// Metrics is optional.
	Metrics *metrics.Recorder
}

// DefaultOptions returns the standard settings.
func DefaultOptions() Options {
	return Options{
		Detect:   dedupe.DefaultDetectOptions(),
		Merge:    dedupe.DefaultMergeOptions(),
		DropPast: true,
		Now:      time.Now,
	}
}

// Stats counts what happened to the records of one run.
type Stats struct {
	Input         int `json:"input"`
	Undecodable   int `json:"undecodable"` // skipped while loading, before Input
	Rejected      int `json:"rejected"`
	Recovered     int `json:"recovered"`
	UnknownVenues int `json:"unknown_venues"`
	Past          int `json:"past"`
	Days          int `json:"days"`
	Clusters      int `json:"clusters"`
	Merged        int `json:"merged"`
	Output        int `json:"output"`
}

// Result is the canonical catalog of one run.
type Result struct {
	Events []*event.Event
	Stats  Stats
}

// Pipeline normalizes, deduplicates and merges a pool of raw records.
type Pipeline struct {
	opts       Options
	normalizer *normalize.Normalizer
	detector   *dedupe.Detector
	merger     *dedupe.Merger
}

// New builds a Pipeline from opts.
func New(opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		opts:       opts,
		normalizer: normalize.New(opts.Venues),
		detector:   dedupe.NewDetector(opts.Detect),
		merger:     dedupe.NewMerger(opts.Merge),
	}
}

type dayResult struct {
	events   []*event.Event
	clusters int
	merged   int
}

// Run processes records. Input records are never mutated. The only error
// is cancellation of ctx.
func (p *Pipeline) Run(ctx context.Context, records []*event.Event) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()

	stageStart := time.Now()
	normalized, nstats := p.normalizer.NormalizeAll(records)
	p.opts.Metrics.ObserveStage(metrics.StageNormalize, time.Since(stageStart))

	stats := Stats{
		Input:         nstats.Input,
		Rejected:      nstats.Rejected,
		Recovered:     nstats.Recovered,
		UnknownVenues: nstats.UnknownVenues,
	}

	if p.opts.DropPast {
		stageStart = time.Now()
		normalized, stats.Past = dropPast(normalized, p.opts.Now())
		p.opts.Metrics.ObserveStage(metrics.StageFilter, time.Since(stageStart))
	}

	keys, byDay := groupByDay(normalized)
	stats.Days = len(keys)

	stageStart = time.Now()
	results := make([]dayResult, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processDay(byDay[key])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("deduplicating: %w", err)
	}
	p.opts.Metrics.ObserveStage(metrics.StageDedupe, time.Since(stageStart))

	events := make([]*event.Event, 0, len(normalized))
	for _, r := range results {
		events = append(events, r.events...)
		stats.Clusters += r.clusters
		stats.Merged += r.merged
	}
	stats.Output = len(events)

	elapsed := time.Since(started)
	p.opts.Metrics.ObserveStage(metrics.StageTotal, elapsed)
	p.opts.Metrics.RecordRun(metrics.Counts{
		Input:     stats.Input,
		Rejected:  stats.Rejected,
		Recovered: stats.Recovered,
		Unknown:   stats.UnknownVenues,
		Past:      stats.Past,
		Days:      stats.Days,
		Clusters:  stats.Clusters,
		Merged:    stats.Merged,
		Output:    stats.Output,
	}, time.Now())

	logger.Info("Pipeline complete", logger.Fields{
		"input":          stats.Input,
		"rejected":       stats.Rejected,
		"recovered":      stats.Recovered,
		"unknown_venues": stats.UnknownVenues,
		"past":           stats.Past,
		"days":           stats.Days,
		"clusters":       stats.Clusters,
		"merged":         stats.Merged,
		"output":         stats.Output,
		"elapsed":        elapsed,
	})

	return &Result{Events: events, Stats: stats}, nil
}

func (p *Pipeline) processDay(day []*event.Event) dayResult {
	var r dayResult
	for _, cluster := range p.detector.Detect(day) {
		if len(cluster) > 1 {
			r.clusters++
			r.merged += len(cluster) - 1
		}
		r.events = append(r.events, p.merger.Merge(cluster))
	}
	sortDay(r.events)
	return r
}

func dropPast(events []*event.Event, now time.Time) ([]*event.Event, int) {
	kept := events[:0:0]
	for _, evt := range events {
		if evt.IsPast(now) {
			continue
		}
		kept = append(kept, evt)
	}
	if dropped := len(events) - len(kept); dropped > 0 {
		logger.Info("Dropped past shows", logger.Fields{
			"count": dropped,
			"today": event.StartOfDay(event.WallClock(now)).Format(event.DayLayout),
		})
		return kept, dropped
	}
	return kept, 0
}

// groupByDay buckets records by calendar day, keeping input order within
// a day, and returns the day keys in ascending order.
func groupByDay(events []*event.Event) ([]string, map[string][]*event.Event) {
	byDay := make(map[string][]*event.Event)
	for _, evt := range events {
		key := evt.DayKey()
		byDay[key] = append(byDay[key], evt)
	}
	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, byDay
}

// sortDay orders one day's shows by start time, venue and headliner.
// Unparseable times sort last.
func sortDay(events []*event.Event) {
	minutes := func(evt *event.Event) int {
		if m, ok := normalize.Minutes(evt.Time); ok {
			return m
		}
		return 24 * 60
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if ma, mb := minutes(a), minutes(b); ma != mb {
			return ma < mb
		}
		if a.VenueID != b.VenueID {
			return a.VenueID < b.VenueID
		}
		if ha, hb := a.Headliner(), b.Headliner(); ha != hb {
			return ha < hb
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Source < b.Source
	})
}
