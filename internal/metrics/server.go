package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trailarr/internal/logging"
)

// Server serves Prometheus metrics on a dedicated address.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	log        *slog.Logger
}

// NewServer creates a metrics server exposing /metrics on bind.
func NewServer(bind string, reg *prometheus.Registry, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &Server{
		httpServer: &http.Server{
			Addr:              bind,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: logging.NewComponentLogger(logger, "metrics-server"),
	}
}

// Listen binds the server address. It is called by Start when needed and
// lets callers learn the bound address first.
func (s *Server) Listen() (net.Addr, error) {
	if s.listener == nil {
		ln, err := net.Listen("tcp", s.httpServer.Addr)
		if err != nil {
			return nil, err
		}
		s.listener = ln
	}
	return s.listener.Addr(), nil
}

// Start begins serving metrics. Blocks until the server stops.
func (s *Server) Start() error {
	addr, err := s.Listen()
	if err != nil {
		s.log.Error("metrics server error", logging.Error(err))
		return err
	}
	s.log.Info("starting metrics server", logging.String("addr", addr.String()))
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("metrics server error", logging.Error(err))
		return err
	}
	return nil
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
