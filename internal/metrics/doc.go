/*
Package metrics records pipeline counters and stage timings with the
Prometheus client library.

A batch run has no scrape endpoint, so collectors live on a private
registry and are exported with WriteTextfile for the node_exporter
textfile collector:

	gigmerge_records_input_total
	gigmerge_records_rejected_total
	gigmerge_records_recovered_total
	gigmerge_records_undecodable_total
	gigmerge_unknown_venues_total
	gigmerge_records_past_total
	gigmerge_days_processed_total
	gigmerge_clusters_merged_total
	gigmerge_records_merged_total
	gigmerge_records_output_total
	gigmerge_runs_total
	gigmerge_stage_duration_seconds{stage}
	gigmerge_last_run_timestamp_seconds
*/
package metrics
