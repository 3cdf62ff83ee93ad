// Package metric provides Prometheus metrics for kvsh.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry of command counters and latency histograms
//   - collector.go: collector reporting the history size on scrape
//
// Metrics are exposed at /metrics in Prometheus format when the shell
// is started with a metrics address.
package metric
