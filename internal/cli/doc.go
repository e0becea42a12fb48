// Package cli implements the command-line interface for gigmerge.
//
// The cli package provides the Cobra-based CLI: `process` runs the merge
// pipeline over the scraper output and writes the catalog, `new` reports
// shows added since the last check (exit code 2 when there are any),
// `list` filters and prints the catalog as text, JSON or iCalendar, `show`
// prints one show by id, and `venues` inspects the venue registry.
package cli
