package metric

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixedSizer int

func (s fixedSizer) Len() int { return int(s) }

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.ObserveCommand("GET")
	r.ObserveCommand("GET")
	r.ObserveCommand("SET")
	r.ObserveError(ErrorKindArity)

	if got := testutil.ToFloat64(r.commandsTotal.WithLabelValues("GET")); got != 2 {
		t.Errorf("GET = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.commandsTotal.WithLabelValues("SET")); got != 1 {
		t.Errorf("SET = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues(ErrorKindArity)); got != 1 {
		t.Errorf("arity errors = %v, want 1", got)
	}
}

func TestRegistry_Connections(t *testing.T) {
	r := NewRegistry()

	r.ConnOpened()
	r.ConnOpened()
	r.ConnClosed()

	if got := testutil.ToFloat64(r.connectionsActive); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.connectionsTotal); got != 2 {
		t.Errorf("total = %v, want 2", got)
	}
}

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry
	r.ObserveCommand("GET")
	r.ObserveError(ErrorKindUnknown)
	r.ConnOpened()
	r.ConnClosed()
	if err := r.Register(NewKeysCollector(fixedSizer(1))); err != nil {
		t.Errorf("Register on nil registry: %v", err)
	}
}

func TestKeysCollector(t *testing.T) {
	c := NewKeysCollector(fixedSizer(42))
	expected := `
# HELP respkv_keys Number of keys in the store.
# TYPE respkv_keys gauge
respkv_keys 42
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestRegistry_Lint(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewKeysCollector(fixedSizer(0))); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.ObserveCommand("PING")
	r.ObserveError(ErrorKindProtocol)

	problems, err := testutil.GatherAndLint(r.Gatherer(),
		"respkv_commands_total",
		"respkv_command_errors_total",
		"respkv_connections_active",
		"respkv_connections_total",
		"respkv_keys",
	)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("lint problems: %v", problems)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveCommand("ECHO")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `respkv_commands_total{command="ECHO"} 1`) {
		t.Errorf("metrics output missing ECHO counter:\n%s", rec.Body.String())
	}
}
