package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/gigmerge/internal/config"
	"github.com/pfrederiksen/gigmerge/internal/storage"
)

var testNow = time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

const rawListings = `[
  {"date": "2027-03-13T20:00:00", "venue": {"id": "paradise", "name": "Paradise Rock Club"},
   "bands": ["Converge", "Cave In"], "price": {"advance": 25, "door": null}, "time": "8pm",
   "source": "ticketmaster"},
  {"date": "2027-03-13", "venue": {"id": "paradise_rock_club", "name": "Paradise"},
   "bands": ["Converge"], "price": {"advance": null, "door": null},
   "source": "scrape:do617", "source_url": "https://do617.example.com/converge"},
  {"date": "2027-03-16T19:00:00", "venue": {"id": "royale", "name": "Royale"},
   "bands": ["Pile"], "price": {"advance": 15, "door": 18}, "time": "7pm", "source": "scrape:do617"},
  {"date": "2027-03-17", "venue": {"id": "royale", "name": "Royale"},
   "bands": ["", "  "], "price": {"advance": null, "door": null}, "source": "scrape:do617"},
  {"date": "2026-01-10T20:00:00", "venue": {"id": "royale", "name": "Royale"},
   "bands": ["Old News"], "price": {"advance": null, "door": null}, "source": "ticketmaster"}
]`

// testDataDir isolates the config search and returns a data directory
// holding rawListings.
func testDataDir(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Chdir(home)
	t.Setenv("HOME", home)
	t.Setenv(config.ConfigPathEnvVar, "")

	dir := filepath.Join(home, "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.RawFile), []byte(rawListings), 0o644))
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out, now: func() time.Time { return testNow }}
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--data-dir", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProcess(t *testing.T) {
	dir := testDataDir(t)

	out, err := run(t, dir, "process", "--format", "json")
	require.NoError(t, err)

	var stats map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.EqualValues(t, 5, stats["input"])
	assert.EqualValues(t, 1, stats["rejected"])
	assert.EqualValues(t, 1, stats["past"])
	assert.EqualValues(t, 1, stats["clusters"])
	assert.EqualValues(t, 1, stats["merged"])
	assert.EqualValues(t, 2, stats["output"])
	assert.Equal(t, filepath.Join(dir, storage.ProcessedFile), stats["path"])

	store, err := storage.New(dir)
	require.NoError(t, err)
	events, err := store.LoadProcessed()
	require.NoError(t, err)
	require.Len(t, events, 2)

	converge := events[0]
	assert.Equal(t, "paradise", converge.VenueID)
	assert.Equal(t, []string{"Converge", "Cave In"}, converge.Acts)
	assert.Equal(t, "merged:scrape:do617+ticketmaster", converge.Source)
	assert.Equal(t, "https://do617.example.com/converge", converge.SourceURL)
	assert.Equal(t, "Pile", events[1].Headliner())
}

func TestProcess_TextAndInput(t *testing.T) {
	dir := testDataDir(t)
	input := filepath.Join(t.TempDir(), "elsewhere.json")
	require.NoError(t, os.WriteFile(input, []byte(rawListings), 0o644))

	out, err := run(t, dir, "process", "--input", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Read 5 records (1 rejected")
	assert.Contains(t, out, "Dropped 1 past shows")
	assert.Contains(t, out, "Merged 1 duplicates in 1 clusters")
	assert.Contains(t, out, "Wrote 2 shows to")
}

func TestProcess_MissingInput(t *testing.T) {
	dir := testDataDir(t)
	_, err := run(t, dir, "process", "--input", filepath.Join(dir, "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading raw records")
}

func TestProcess_MetricsTextfile(t *testing.T) {
	dir := testDataDir(t)
	prom := filepath.Join(t.TempDir(), "gigmerge.prom")
	t.Setenv("GIGMERGE_METRICS_TEXTFILE", prom)

	_, err := run(t, dir, "process")
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gigmerge_records_output_total 2")
}

func TestNew_ReportsOnce(t *testing.T) {
	dir := testDataDir(t)

	// No catalog yet, so the pipeline runs first.
	out, err := run(t, dir, "new")
	require.ErrorIs(t, err, ErrNewShows)
	assert.Contains(t, out, "NEW: ")
	assert.Contains(t, out, "Converge w/ Cave In")
	assert.Contains(t, out, "Pile")
	assert.Contains(t, out, "Total: 2 new")

	out, err = run(t, dir, "new")
	require.NoError(t, err)
	assert.Equal(t, "No new shows found.\n", out)
}

func TestNew_VenueFilter(t *testing.T) {
	dir := testDataDir(t)

	out, err := run(t, dir, "new", "--venue", "royale", "--format", "json")
	require.ErrorIs(t, err, ErrNewShows)

	var result struct {
		Venue      string            `json:"venue"`
		EventCount int               `json:"event_count"`
		Events     []json.RawMessage `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "royale", result.Venue)
	assert.Equal(t, 1, result.EventCount)
	assert.Len(t, result.Events, 1)
}

func TestNew_Reset(t *testing.T) {
	dir := testDataDir(t)

	out, err := run(t, dir, "new", "--reset")
	require.NoError(t, err)
	assert.Equal(t, "Snapshot refreshed successfully.\n", out)

	_, err = run(t, dir, "new")
	assert.NoError(t, err)
}

func TestNew_DryRunKeepsSnapshot(t *testing.T) {
	dir := testDataDir(t)

	_, err := run(t, dir, "new", "--dry-run")
	require.ErrorIs(t, err, ErrNewShows)

	_, err = run(t, dir, "new", "--dry-run")
	assert.ErrorIs(t, err, ErrNewShows)
}

func TestNew_ICS(t *testing.T) {
	dir := testDataDir(t)

	out, err := run(t, dir, "new", "--format", "ics")
	require.ErrorIs(t, err, ErrNewShows)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
}

func TestNew_GroupedByVenue(t *testing.T) {
	dir := testDataDir(t)

	out, err := run(t, dir, "new", "--sort", "venue")
	require.ErrorIs(t, err, ErrNewShows)
	assert.Contains(t, out, "Paradise Rock Club (1 new):")
	assert.Contains(t, out, "Royale (1 new):")
	assert.Contains(t, out, "across 2 venues")
}

func TestList(t *testing.T) {
	dir := testDataDir(t)
	_, err := run(t, dir, "process")
	require.NoError(t, err)

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "everything",
			args:     nil,
			contains: []string{"Converge", "Pile", "Total: 2 shows"},
		},
		{
			name:     "band",
			args:     []string{"--band", "pile"},
			contains: []string{"Pile", "Total: 1 shows"},
			excludes: []string{"Converge"},
		},
		{
			name:     "weekends",
			args:     []string{"--weekends"},
			contains: []string{"Converge"},
			excludes: []string{"Pile"},
		},
		{
			name:     "max price",
			args:     []string{"--max-price", "20"},
			contains: []string{"Pile"},
			excludes: []string{"Converge"},
		},
		{
			name:     "date window",
			args:     []string{"--from", "2027-03-14", "--to", "2027-03-31"},
			contains: []string{"Pile"},
			excludes: []string{"Converge"},
		},
		{
			name:     "nothing matches",
			args:     []string{"--venue", "sinclair"},
			contains: []string{"No shows found."},
		},
		{
			name:     "grouped",
			args:     []string{"--group", "--verbose"},
			contains: []string{"Royale (1 shows):", "Source: merged:scrape:do617+ticketmaster", "Price: $15/$18"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, dir, append([]string{"list"}, tt.args...)...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestList_Days(t *testing.T) {
	dir := testDataDir(t)
	_, err := run(t, dir, "process")
	require.NoError(t, err)

	out, err := run(t, dir, "list", "--days", "30")
	require.NoError(t, err)
	assert.Equal(t, "No shows found.\n", out)
}

func TestList_InvalidFlags(t *testing.T) {
	dir := testDataDir(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"--format", "xml"}, "invalid format"},
		{"sort", []string{"--sort", "price"}, "invalid sort order"},
		{"from", []string{"--from", "tomorrow"}, "invalid --from date"},
		{"reversed", []string{"--from", "2027-03-20", "--to", "2027-03-10"}, "is before --from"},
		{"negative price", []string{"--max-price", "-1"}, "must not be negative"},
		{"range", []string{"--range", "sometime"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, append([]string{"list"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVenuesList(t *testing.T) {
	dir := testDataDir(t)

	out, err := run(t, dir, "venues", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Paradise Rock Club")
	assert.Contains(t, out, "Total: ")

	out, err = run(t, dir, "venues", "list", "--format", "json")
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.NotEmpty(t, entries)
}

func TestVenuesResolve(t *testing.T) {
	dir := testDataDir(t)

	out, err := run(t, dir, "venues", "resolve", "paradise_rock_club")
	require.NoError(t, err)
	assert.Equal(t, "paradise\n", out)

	out, err = run(t, dir, "venues", "resolve", "", "Royale")
	require.NoError(t, err)
	assert.Equal(t, "royale\n", out)

	out, err = run(t, dir, "venues", "resolve", "Basement Space")
	require.NoError(t, err)
	assert.Equal(t, "basement_space\n", out)

	_, err = run(t, dir, "venues", "resolve", "--strict", "Basement Space")
	assert.ErrorIs(t, err, errUnknownVenue)
}

func TestSetup_BadConfig(t *testing.T) {
	dir := testDataDir(t)
	path := filepath.Join(t.TempDir(), "gigmerge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: -3\n"), 0o644))

	_, err := run(t, dir, "--config", path, "venues", "list")
	assert.Error(t, err)
}

func TestProcess_SkipsUndecodableRecords(t *testing.T) {
	dir := testDataDir(t)
	bad := `[
  {"date": "TBA", "venue": {"id": "royale"}, "bands": ["Mystery Act"], "source": "scrape:do617"},
  {"date": "2027-03-20", "venue": {"id": "royale"}, "bands": ["Wrong Price"], "price": {"advance": "$15"}, "source": "scrape:do617"},`
	raw := strings.Replace(rawListings, "[", bad, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.RawFile), []byte(raw), 0o644))

	out, err := run(t, dir, "process", "--format", "json")
	require.NoError(t, err)

	var stats map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.EqualValues(t, 2, stats["undecodable"])
	assert.EqualValues(t, 5, stats["input"])
	assert.EqualValues(t, 2, stats["output"])

	out, err = run(t, dir, "process")
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped 2 undecodable records")
}

func TestProcess_MetricsWriteFailureIsNotFatal(t *testing.T) {
	dir := testDataDir(t)
	t.Setenv("GIGMERGE_METRICS_TEXTFILE", filepath.Join(dir, "no", "such", "dir", "gigmerge.prom"))

	out, err := run(t, dir, "process")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 shows to")
	assert.FileExists(t, filepath.Join(dir, storage.ProcessedFile))
}

func TestShow(t *testing.T) {
	dir := testDataDir(t)
	_, err := run(t, dir, "process")
	require.NoError(t, err)

	store, err := storage.New(dir)
	require.NoError(t, err)
	events, err := store.LoadProcessed()
	require.NoError(t, err)
	id := events[0].ID

	out, err := run(t, dir, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Converge w/ Cave In")
	assert.Contains(t, out, "ID: "+id)
	assert.Contains(t, out, "Source: merged:scrape:do617+ticketmaster")

	out, err = run(t, dir, "show", id, "--format", "ics")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:"+id+"@gigmerge")

	out, err = run(t, dir, "show", id, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "`+id+`"`)

	_, err = run(t, dir, "show", "nonexistent")
	assert.ErrorIs(t, err, storage.ErrEventNotFound)
}
