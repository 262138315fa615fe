package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "respkv"

// Error kinds used as the "kind" label of the error counter.
const (
	ErrorKindArity       = "arity"
	ErrorKindUnknown     = "unknown"
	ErrorKindProtocol    = "protocol"
	ErrorKindRateLimited = "rate_limited"
	ErrorKindOther       = "other"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	commandsTotal     *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter
}

// NewRegistry creates a registry with the application metrics and the
// Go runtime and process collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Number of executed commands by command name.",
		}, []string{"command"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "command_errors_total",
			Help:      "Number of error replies by kind.",
		}, []string{"kind"}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "connections_active",
			Help:      "Number of open client connections.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "connections_total",
			Help:      "Number of accepted client connections.",
		}),
	}

	r.reg.MustRegister(
		r.commandsTotal,
		r.errorsTotal,
		r.connectionsActive,
		r.connectionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Register adds an extra collector, such as a KeysCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	if r == nil {
		return nil
	}
	return r.reg.Register(c)
}

// ObserveCommand counts one executed command.
func (r *Registry) ObserveCommand(command string) {
	if r == nil {
		return
	}
	r.commandsTotal.WithLabelValues(command).Inc()
}

// ObserveError counts one error reply of the given kind.
func (r *Registry) ObserveError(kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// ConnOpened records an accepted connection.
func (r *Registry) ConnOpened() {
	if r == nil {
		return
	}
	r.connectionsTotal.Inc()
	r.connectionsActive.Inc()
}

// ConnClosed records a closed connection.
func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.connectionsActive.Dec()
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
