package metric

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360/cyclicbuffer/errors"
)

// Server represents the metrics HTTP server
type Server struct {
	port     int
	path     string
	server   *http.Server
	listener net.Listener
	registry *MetricsRegistry
	mu       sync.Mutex // protects server, listener and stopped
	stopped  bool       // Stop ran after the last Listen
}

// NewServer creates a new metrics server with the provided registry. Port 0 picks a free
// port when the server starts; Address reports the bound port afterwards.
func NewServer(port int, path string, registry *MetricsRegistry) *Server {
	if path == "" {
		path = "/metrics"
	}

	return &Server{
		port:     port,
		path:     path,
		registry: registry,
	}
}

// Handler returns the HTTP handler serving metrics, /health and an index page.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(s.path, promhttp.HandlerFor(
		s.registry.PrometheusRegistry(),
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	))

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprintf(w, `<html>
<head><title>cyclicbuf Metrics</title></head>
<body>
<h1>cyclicbuf Metrics Server</h1>
<p><a href="%s">Metrics</a></p>
<p><a href="/health">Health</a></p>
</body>
</html>`, s.path)
	})

	return mux
}

// Start binds the port and serves until Stop is called. It blocks; a clean shutdown
// returns nil.
func (s *Server) Start() error {
	if _, err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Listen binds the port without serving and returns the metrics URL. Callers that must
// not race Stop bind synchronously with Listen and run Serve in a goroutine.
func (s *Server) Listen() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return "", errors.WrapInvalid(
			fmt.Errorf("server already running"),
			"Server", "Listen", "cannot start server that is already running")
	}

	if s.registry == nil {
		return "", errors.WrapFatal(
			fmt.Errorf("nil registry"),
			"Server", "Listen", "metrics registry not provided")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return "", errors.WrapFatal(err, "Server", "Listen",
			fmt.Sprintf("failed to listen on port %d", s.port))
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.listener = ln
	s.stopped = false
	return s.addressLocked(), nil
}

// Serve handles requests on the listener bound by Listen until Stop is called. It returns
// nil right away when Stop already ran.
func (s *Server) Serve() error {
	s.mu.Lock()
	srv, ln, stopped := s.server, s.listener, s.stopped
	s.mu.Unlock()

	if srv == nil {
		if stopped {
			return nil
		}
		return errors.WrapInvalid(
			fmt.Errorf("server not listening"),
			"Server", "Serve", "call Listen before Serve")
	}

	if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.WrapFatal(err, "Server", "Serve",
			fmt.Sprintf("failed to serve on port %d", s.port))
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight scrapes until ctx ends. The listener
// is closed even when Serve never ran.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, ln := s.server, s.listener
	s.server = nil // allow restart
	s.listener = nil
	if srv != nil {
		s.stopped = true
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return errors.WrapTransient(err, "Server", "Stop", "failed to stop HTTP server")
	}
	if err := ln.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		return errors.WrapTransient(err, "Server", "Stop", "failed to close listener")
	}
	return nil
}

// Address returns the metrics URL. It reflects the bound port once Listen has bound it.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addressLocked()
}

func (s *Server) addressLocked() string {
	port := s.port
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			port = addr.Port
		}
	}
	return fmt.Sprintf("http://localhost:%d%s", port, s.path)
}
