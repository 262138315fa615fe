package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

// Server represents the admin HTTP server.
type Server struct {
	httpServer *http.Server
	ln         net.Listener
}

// Health is the /healthz response body.
type Health struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// New creates an admin server on addr. metrics may be nil, in which case
// /metrics is not routed.
func New(addr string, metrics http.Handler) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the routing handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the listener and serves in the background. Serve errors
// other than a normal close are sent to errs when it is non-nil.
func (s *Server) Start(errs chan<- error) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && errs != nil {
			errs <- err
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Health{Status: "ok", Build: buildinfo.Get()})
}
