// Package metric provides Prometheus metrics for respkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry, command/connection counters and HTTP handler
//   - collector.go: collector reporting the number of stored keys
//
// Metrics are exposed at /metrics in Prometheus format by the admin
// HTTP listener. Every Registry method accepts a nil receiver, so
// components can run without metrics.
package metric
