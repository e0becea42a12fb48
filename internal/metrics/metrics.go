package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages observed by StageDuration.
const (
	StageNormalize = "normalize"
	StageFilter    = "filter"
	StageDedupe    = "dedupe"
	StageTotal     = "total"
)

// Counts is the per-run tally handed to RecordRun.
type Counts struct {
	Input     int
	Rejected  int
	Recovered int
	Unknown   int
	Past      int
	Days      int
	Clusters  int
	Merged    int
	Output    int
}

// Recorder owns the pipeline collectors on a private registry so runs in
// the same process (and tests) never collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	RecordsInput     prometheus.Counter
	RecordsRejected  prometheus.Counter
	RecordsRecovered prometheus.Counter
	Undecodable      prometheus.Counter
	UnknownVenues    prometheus.Counter
	RecordsPast      prometheus.Counter
	DaysProcessed    prometheus.Counter
	ClustersMerged   prometheus.Counter
	RecordsMerged    prometheus.Counter
	RecordsOutput    prometheus.Counter
	Runs             prometheus.Counter

	// StageDuration measures each pipeline stage.
	StageDuration *prometheus.HistogramVec

	// LastRunTimestamp is the Unix time of the last completed run.
	LastRunTimestamp prometheus.Gauge
}

// New registers a fresh set of collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gigmerge",
			Name:      name,
			Help:      help,
		})
	}

	return &Recorder{
		registry:         reg,
		RecordsInput:     counter("records_input_total", "Raw records read by the pipeline"),
		RecordsRejected:  counter("records_rejected_total", "Records dropped because no act survived normalization"),
		RecordsRecovered: counter("records_recovered_total", "Records kept unchanged after normalization panicked"),
		Undecodable:      counter("records_undecodable_total", "Raw records skipped because they could not be decoded"),
		UnknownVenues:    counter("unknown_venues_total", "Records whose venue is not in the registry"),
		RecordsPast:      counter("records_past_total", "Records dropped because the show already happened"),
		DaysProcessed:    counter("days_processed_total", "Calendar days deduplicated"),
		ClustersMerged:   counter("clusters_merged_total", "Clusters with more than one member"),
		RecordsMerged:    counter("records_merged_total", "Records folded into another record"),
		RecordsOutput:    counter("records_output_total", "Canonical records written"),
		Runs:             counter("runs_total", "Completed pipeline runs"),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gigmerge",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"stage"}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gigmerge",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the last completed run",
		}),
	}
}

// Registry exposes the collectors for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records how long a stage took. Safe on a nil Recorder.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun adds one run's counts. Safe on a nil Recorder.
func (r *Recorder) RecordRun(c Counts, finished time.Time) {
	if r == nil {
		return
	}
	r.RecordsInput.Add(float64(c.Input))
	r.RecordsRejected.Add(float64(c.Rejected))
	r.RecordsRecovered.Add(float64(c.Recovered))
	r.UnknownVenues.Add(float64(c.Unknown))
	r.RecordsPast.Add(float64(c.Past))
	r.DaysProcessed.Add(float64(c.Days))
	r.ClustersMerged.Add(float64(c.Clusters))
	r.RecordsMerged.Add(float64(c.Merged))
	r.RecordsOutput.Add(float64(c.Output))
	r.Runs.Inc()
	r.LastRunTimestamp.Set(float64(finished.Unix()))
}

// RecordUndecodable counts raw records skipped while loading. Safe on a nil
// Recorder.
func (r *Recorder) RecordUndecodable(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.Undecodable.Add(float64(n))
}

// WriteTextfile writes the collectors in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
