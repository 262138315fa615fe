// Package main provides the entry point for respkv-server.
//
// respkv-server serves an in-memory string key-value store over RESP2.
// It answers ECHO, SET, GET and PING and optionally exposes Prometheus
// metrics and a health check over HTTP.
package main
