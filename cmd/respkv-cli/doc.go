// Package main provides the entry point for respkv-cli.
//
// Usage:
//
//	respkv-cli [--server host:port] ping
//	respkv-cli set <key> <value>
//	respkv-cli get <key>
//	respkv-cli echo <message>
package main
