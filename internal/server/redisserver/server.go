package redisserver

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// Config holds the RESP server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadBufferSize is the size of a single socket read. Each read is
	// decoded on its own; frames are not reassembled across reads.
	ReadBufferSize int
	// IdleTimeout closes connections that send nothing for this long.
	// Zero waits forever.
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per client IP.
	// Zero disables rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           "127.0.0.1:6379",
		ReadBufferSize: 1024,
	}
}

// Server accepts RESP connections and answers each frame through a
// Dispatcher.
type Server struct {
	cfg        *Config
	dispatcher *Dispatcher
	limiter    *clientLimiter
	metrics    *metric.Registry
	log        logger.Logger

	ln       net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup
	stopped  chan struct{}
	stopOnce sync.Once

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
	perIP  map[string]int
}

// New creates a RESP server executing commands against store.
// m may be nil.
func New(cfg *Config, store Store, log logger.Logger, m *metric.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = DefaultConfig().ReadBufferSize
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.With("component", "redisserver")

	s := &Server{
		cfg:     cfg,
		metrics: m,
		log:     log,
		conns:   make(map[net.Conn]struct{}),
		perIP:   make(map[string]int),
		stopped: make(chan struct{}),
	}
	s.dispatcher = NewDispatcher(store, WithMetrics(m), WithLogger(log.Slog()))
	if cfg.RateLimit > 0 {
		s.limiter = newClientLimiter(cfg.RateLimit)
	}
	return s
}

// Start binds the listener and serves connections in the background.
// Cancelling ctx closes the listener and every open connection, as
// Shutdown does, without waiting for connection goroutines.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)
	s.log.Info("redis server listening", "address", ln.Addr().String())

	go func() {
		select {
		case <-ctx.Done():
			s.log.Info("redis server context done, closing listener")
			_ = s.stop()
		case <-s.stopped:
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx); err != nil && s.running.Load() {
			s.log.Error("redis server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown closes the listener and every open connection, then waits
// for connection goroutines to exit or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	firstErr := s.stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return firstErr
}

// stop closes the listener and all tracked connections. Only the first
// call does any work.
func (s *Server) stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.running.Store(false)
		close(s.stopped)

		if s.ln != nil {
			if cerr := s.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
				err = cerr
			}
		}

		s.connMu.Lock()
		for c := range s.conns {
			_ = c.Close()
		}
		s.connMu.Unlock()
	})
	return err
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		if !s.track(c) {
			_ = c.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, c)
		}()
	}
}

// track registers c so Shutdown can close it. It reports false when the
// server is already stopping.
func (s *Server) track(c net.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	s.perIP[remoteIP(c)]++
	return true
}

func (s *Server) untrack(c net.Conn) {
	ip := remoteIP(c)

	s.connMu.Lock()
	delete(s.conns, c)
	s.perIP[ip]--
	last := s.perIP[ip] <= 0
	if last {
		delete(s.perIP, ip)
	}
	s.connMu.Unlock()

	if last && s.limiter != nil {
		s.limiter.forget(ip)
	}
}

func (s *Server) serveConn(ctx context.Context, c net.Conn) {
	ctx = logger.WithLogger(ctx, s.log)
	ctx = logger.WithConnID(ctx, ulid.Make().String())
	log := logger.L(ctx)

	s.metrics.ConnOpened()
	defer func() {
		_ = c.Close()
		s.untrack(c)
		s.metrics.ConnClosed()
	}()

	ip := remoteIP(c)
	log.Debug("connection accepted", "remote", c.RemoteAddr().String())

	buf := make([]byte, s.cfg.ReadBufferSize)
	out := make([]byte, 0, s.cfg.ReadBufferSize)
	for {
		if s.cfg.IdleTimeout > 0 {
			if err := c.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
				return
			}
		}

		n, err := c.Read(buf)
		if n > 0 {
			out = s.process(out[:0], buf[:n], ip)
			if _, werr := c.Write(out); werr != nil {
				log.Debug("connection write error", "error", werr)
				return
			}
		}
		if err != nil {
			var netErr net.Error
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				log.Debug("connection closed")
			case errors.As(err, &netErr) && netErr.Timeout():
				log.Debug("connection idle timeout")
			default:
				log.Debug("connection read error", "error", err)
			}
			return
		}
		if n == 0 {
			log.Debug("connection closed")
			return
		}
	}
}

// process answers every frame in data, appending replies to dst. A
// decode error produces one error reply and discards the rest of data.
func (s *Server) process(dst, data []byte, ip string) []byte {
	for off := 0; off < len(data); {
		req, used, err := DecodeFrame(data[off:])
		if err != nil {
			s.metrics.ObserveError(metric.ErrorKindProtocol)
			return append(dst, ErrorReply(err.Error())...)
		}
		off += used

		if s.limiter != nil && !s.limiter.allow(ip) {
			s.metrics.ObserveError(metric.ErrorKindRateLimited)
			dst = append(dst, ErrorReply("rate limit exceeded")...)
			continue
		}

		reply, err := s.dispatcher.Execute(req)
		if err != nil {
			dst = append(dst, ErrorReply(err.Error())...)
			continue
		}
		dst = append(dst, reply...)
	}
	return dst
}

func remoteIP(c net.Conn) string {
	addr := c.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
