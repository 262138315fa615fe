// Package httpserver provides the admin HTTP listener of respkv-server.
//
// It uses the Go standard library net/http and serves:
//
//   - /metrics: Prometheus exposition
//   - /healthz: liveness with build information
package httpserver
