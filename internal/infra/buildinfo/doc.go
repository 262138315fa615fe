// Package buildinfo exposes version information of the respkv binaries.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/respkv/internal/infra/buildinfo.Version=v0.1.0"
//
// When Commit is not injected, the VCS revision recorded by the Go
// toolchain is used if available.
package buildinfo
