package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/pfrederiksen/gigmerge/internal/event"
	"github.com/pfrederiksen/gigmerge/internal/logger"
)

// File names inside the data directory.
const (
	RawFile       = "raw_concerts.json"
	ProcessedFile = "processed_concerts.json"
	SnapshotFile  = "snapshot.json"
)

// MaxChangeLog bounds how many changes a snapshot remembers.
const MaxChangeLog = 200

// ErrEventNotFound is returned by GetEventByID for an unknown id.
var ErrEventNotFound = errors.New("event not found")

// ErrNoCatalog is returned when no processed catalog has been written yet.
var ErrNoCatalog = errors.New("no processed catalog; run `gigmerge process` first")

// Storage handles the catalog files in one data directory
type Storage struct {
	dataDir string
	now     func() time.Time
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
		now:     time.Now,
	}, nil
}

// Dir returns the data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// Path resolves name inside the data directory unless it is absolute.
func (s *Storage) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dataDir, name)
}

// LoadRaw reads the scraper output at path (see Path). Records that cannot
// be decoded are logged and skipped; skipped counts them.
func (s *Storage) LoadRaw(path string) (events []*event.Event, skipped int, err error) {
	data, err := os.ReadFile(s.Path(path))
	if err != nil {
		return nil, 0, fmt.Errorf("reading raw records: %w", err)
	}
	events, bad, err := event.DecodeRecords(data)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing raw records %s: %w", path, err)
	}
	for _, e := range bad {
		logger.Warn("Skipping undecodable record", logger.Fields{
			"path":  path,
			"error": e.Error(),
		})
	}
	return events, len(bad), nil
}

// LoadProcessed reads the canonical catalog.
func (s *Storage) LoadProcessed() ([]*event.Event, error) {
	data, err := os.ReadFile(s.Path(ProcessedFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoCatalog
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	events, err := event.DecodeList(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return events, nil
}

// SaveProcessed writes the canonical catalog for the site renderer.
func (s *Storage) SaveProcessed(events []*event.Event) error {
	data, err := event.EncodeList(events)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := writeAtomic(s.Path(ProcessedFile), data); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

// LoadSnapshot loads the last saved snapshot
func (s *Storage) LoadSnapshot() (*event.Snapshot, error) {
	data, err := os.ReadFile(s.Path(SnapshotFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// No previous snapshot, return empty one
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Events == nil {
		snapshot.Events = make(map[string]*event.Event)
	}
	if snapshot.StableIndex == nil {
		snapshot.StableIndex = make(map[string]string)
	}
	return &snapshot, nil
}

// SaveSnapshot stamps and saves a snapshot to disk
func (s *Storage) SaveSnapshot(snapshot *event.Snapshot) error {
	snapshot.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if snapshot.RunID == "" {
		snapshot.RunID = uuid.NewString()
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := writeAtomic(s.Path(SnapshotFile), data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// UpdateSnapshot replaces the saved snapshot with events and returns the
// changes against the previous one. The change log keeps the newest
// MaxChangeLog entries.
func (s *Storage) UpdateSnapshot(events []*event.Event) ([]*event.EventChange, error) {
	previous, err := s.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	current := event.CreateSnapshot(events, "", uuid.NewString())
	changes := event.CompareSnapshots(previous, current)

	current.ChangeLog = append(previous.ChangeLog, changes...)
	if n := len(current.ChangeLog); n > MaxChangeLog {
		current.ChangeLog = current.ChangeLog[n-MaxChangeLog:]
	}

	if err := s.SaveSnapshot(current); err != nil {
		return nil, err
	}
	return changes, nil
}

// GetEventByID looks a show up in the processed catalog, then in the
// snapshot, which still holds shows that have since left the catalog.
func (s *Storage) GetEventByID(eventID string) (*event.Event, error) {
	events, err := s.LoadProcessed()
	if err != nil && !errors.Is(err, ErrNoCatalog) {
		return nil, err
	}
	for _, evt := range events {
		if evt.ID == eventID {
			return evt, nil
		}
	}

	snapshot, err := s.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if evt, exists := snapshot.Events[eventID]; exists {
		return evt, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
}

// writeAtomic replaces path so readers never see a half-written file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
