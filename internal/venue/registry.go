package venue

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DefaultState is the home state; locations in it are shown without a suffix.
const DefaultState = "MA"

// Format identifies a registry file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Entry is one canonical venue.
type Entry struct {
	ID       string   `json:"id" yaml:"id" validate:"required,lowercase"`
	Name     string   `json:"name" yaml:"name" validate:"required"`
	Location string   `json:"location" yaml:"location" validate:"required"`
	State    string   `json:"state,omitempty" yaml:"state,omitempty" validate:"omitempty,len=2,uppercase"`
	Variants []string `json:"id_variants,omitempty" yaml:"id_variants,omitempty" validate:"dive,required"`

	// Parent and Room describe one room of a multi-room venue.
	Parent       string   `json:"parent,omitempty" yaml:"parent,omitempty" validate:"required_with=Room"`
	Room         string   `json:"room,omitempty" yaml:"room,omitempty" validate:"required_with=Parent"`
	RoomKeywords []string `json:"room_keywords,omitempty" yaml:"room_keywords,omitempty"`

	// Ambiguous lists substrings that identify this venue without naming a room.
	Ambiguous []string `json:"ambiguous,omitempty" yaml:"ambiguous,omitempty"`
}

type registryFile struct {
	Venues []Entry `json:"venues" yaml:"venues" validate:"dive"`
}

// Registry maps raw venue identifiers to canonical entries. It is
// immutable once built and safe for concurrent reads.
type Registry struct {
	entries      map[string]*Entry
	order        []string
	variants     map[string]string
	rooms        map[string][]*Entry
	ambiguous    []ambiguousKey
	defaultState string
}

type ambiguousKey struct {
	substr string
	id     string
}

// Option configures a Registry.
type Option func(*Registry)

// WithDefaultState overrides the home state used by FormatLocation.
func WithDefaultState(state string) Option {
	return func(r *Registry) {
		if state != "" {
			r.defaultState = strings.ToUpper(state)
		}
	}
}

var validate = validator.New()

// New builds a registry from entries. Duplicate ids, variants claimed by
// two venues and rooms with an unknown parent are rejected.
func New(entries []Entry, opts ...Option) (*Registry, error) {
	r := &Registry{
		entries:      make(map[string]*Entry, len(entries)),
		variants:     make(map[string]string),
		rooms:        make(map[string][]*Entry),
		defaultState: DefaultState,
	}
	for _, opt := range opts {
		opt(r)
	}

	for i := range entries {
		e := entries[i]
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("venue %q: %w", e.ID, err)
		}
		if _, dup := r.entries[e.ID]; dup {
			return nil, fmt.Errorf("duplicate venue id %q", e.ID)
		}
		r.entries[e.ID] = &e
		r.order = append(r.order, e.ID)
	}
	sort.Strings(r.order)

	// Ids and declared variants first so they win over display names.
	for _, id := range r.order {
		e := r.entries[id]
		if err := r.addVariant(e.ID, id, true); err != nil {
			return nil, err
		}
		for _, v := range e.Variants {
			if err := r.addVariant(v, id, true); err != nil {
				return nil, err
			}
		}
	}
	for _, id := range r.order {
		_ = r.addVariant(r.entries[id].Name, id, false)
	}

	for _, id := range r.order {
		e := r.entries[id]
		if e.Parent != "" {
			if _, ok := r.entries[e.Parent]; !ok {
				return nil, fmt.Errorf("venue %q: unknown parent %q", e.ID, e.Parent)
			}
			r.rooms[e.Parent] = append(r.rooms[e.Parent], e)
		}
		for _, s := range e.Ambiguous {
			if k := Key(s); k != "" {
				r.ambiguous = append(r.ambiguous, ambiguousKey{substr: k, id: id})
			}
		}
	}

	// Longest substring first, then id, for a stable scan order.
	sort.Slice(r.ambiguous, func(i, j int) bool {
		a, b := r.ambiguous[i], r.ambiguous[j]
		if len(a.substr) != len(b.substr) {
			return len(a.substr) > len(b.substr)
		}
		return a.id < b.id
	})

	return r, nil
}

func (r *Registry) addVariant(raw, id string, strict bool) error {
	k := Key(raw)
	if k == "" {
		return nil
	}
	if prev, ok := r.variants[k]; ok && prev != id {
		if strict {
			return fmt.Errorf("variant %q maps to both %q and %q", raw, prev, id)
		}
		return nil
	}
	r.variants[k] = id
	return nil
}

// Parse decodes a registry document in the given format.
func Parse(data []byte, format Format, opts ...Option) (*Registry, error) {
	var f registryFile
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse venue registry: %w", err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse venue registry: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported registry format %q", format)
	}
	return New(f.Venues, opts...)
}

// Load reads a registry file. The format follows the file extension;
// anything other than .yaml or .yml is read as JSON.
func Load(path string, opts ...Option) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read venue registry: %w", err)
	}

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return Parse(data, format, opts...)
}

// Lookup returns the entry for a canonical id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns every entry ordered by id.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out
}

// Len returns the number of canonical venues.
func (r *Registry) Len() int {
	return len(r.order)
}

// FormatLocation returns "City" for venues in the home state and
// "City, ST" elsewhere.
func (r *Registry) FormatLocation(id string) (string, bool) {
	e, ok := r.entries[id]
	if !ok {
		return "", false
	}
	if e.State == "" || strings.EqualFold(e.State, r.defaultState) {
		return e.Location, true
	}
	return e.Location + ", " + e.State, true
}
