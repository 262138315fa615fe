package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if info.Commit == "" {
		t.Error("Commit should never be empty")
	}
}

func TestGet_InjectedCommit(t *testing.T) {
	prev := Commit
	t.Cleanup(func() { Commit = prev })

	Commit = "abc123"
	if got := Get().Commit; got != "abc123" {
		t.Errorf("Commit = %q, want abc123", got)
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, Version+" (commit: ") {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, runtime.Version()) {
		t.Errorf("String() = %q, missing Go version", s)
	}
}
