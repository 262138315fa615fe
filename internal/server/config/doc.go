// Package config defines the respkv-server configuration structure.
//
//   - spec.go: configuration types with koanf tags
//   - default.go: default values
//   - verify.go: validation
package config
