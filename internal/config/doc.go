// Package config loads run settings with koanf.
//
// Sources are layered: built-in defaults, then an optional YAML file,
// then environment variables such as GIGMERGE_DATA_DIR,
// GIGMERGE_LOG_LEVEL or GIGMERGE_MIN_CHECKS. The merged result is checked
// with go-playground/validator before use.
//
// Example file:
//
//	data_dir: ~/gigmerge
//	workers: 8
//	logging:
//	  level: debug
//	  format: console
//	detect:
//	  min_checks: 3
//	  time_tolerance: 45m
//	merge:
//	  source_priority:
//	    ticketmaster: 1
//	    rss:bostonhassle: 5
package config
