// Package storage reads and writes the catalog files in the data
// directory.
//
// The directory holds the scraper output (raw_concerts.json), the
// canonical catalog for the site renderer (processed_concerts.json) and
// the snapshot of the last notified catalog (snapshot.json), which new
// show detection and change tracking compare against.
package storage
