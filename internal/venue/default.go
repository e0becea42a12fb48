package venue

import (
	_ "embed"
	"sync"
	"sync/atomic"

	"github.com/pfrederiksen/gigmerge/internal/logger"
)

//go:embed venues.json
var embeddedRegistry []byte

var (
	defaultOnce sync.Once
	defaultReg  atomic.Pointer[Registry]
)

// Default returns the process-wide registry, parsing the embedded venue
// list on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg.Store(embedded())
	})
	return defaultReg.Load()
}

func embedded() *Registry {
	r, err := Parse(embeddedRegistry, FormatJSON)
	if err != nil {
		logger.Error("Embedded venue registry is invalid", nil, err)
		r, _ = New(nil)
		return r
	}
	logger.Debug("Loaded venue registry", logger.Fields{"venues": r.Len()})
	return r
}

// Reload replaces the default registry with the file at path, or with the
// embedded list when path is empty. It must not run concurrently with
// normalization.
func Reload(path string, opts ...Option) error {
	var (
		r   *Registry
		err error
	)
	if path == "" {
		r, err = Parse(embeddedRegistry, FormatJSON, opts...)
	} else {
		r, err = Load(path, opts...)
	}
	if err != nil {
		return err
	}

	defaultOnce.Do(func() {})
	defaultReg.Store(r)
	logger.Debug("Reloaded venue registry", logger.Fields{"path": path, "venues": r.Len()})
	return nil
}

// Resolve maps a raw id and name to a canonical id using the default registry.
func Resolve(rawID, rawName string) string {
	return Default().Resolve(rawID, rawName)
}

// Lookup returns a canonical entry from the default registry.
func Lookup(id string) (Entry, bool) {
	return Default().Lookup(id)
}

// FormatLocation formats a location using the default registry.
func FormatLocation(id string) (string, bool) {
	return Default().FormatLocation(id)
}
