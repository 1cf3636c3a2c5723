// Package metric provides Prometheus metrics for authclient.
//
// A CLI process is short-lived, so metrics are not scraped over HTTP.
// Instead the registry can be written to a node_exporter textfile
// collector on exit (the metrics.file setting).
//
// Metrics include:
//
//   - API request counts by operation and outcome
//   - API request latency histograms
//   - Session store writes
//   - Submissions rejected by the re-entry guard
package metric
