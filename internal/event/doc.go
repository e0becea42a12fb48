// Package event provides the concert record shared by every stage of the catalog.
//
// An Event is produced by an upstream scraper, cleaned in place by the normalizer,
// compared by the duplicate detector and collapsed by the merger. The package also
// owns the JSON wire format, deterministic show identifiers, wall-clock date
// handling, and snapshot-based diffing used to report newly listed shows.
package event
