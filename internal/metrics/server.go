package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is where Server exposes the registry.
const MetricsPath = "/metrics"

// Server exposes a registry over HTTP for scraping while watch mode runs.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer prepares a server on addr. A nil registry serves the default gatherer.
func NewServer(addr string, reg *prom.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	var h http.Handler
	if reg == nil {
		h = promhttp.Handler()
	} else {
		h = promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true, ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelWarn)})
	}
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, h)
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

// Handler returns the mux so tests can serve requests without a listener.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start listens in the background. Listen errors are logged, not returned.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Serving metrics", "addr", s.srv.Addr, "path", MetricsPath)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server failed", "error", err)
		}
	}()
}

// Stop shuts the server down, waiting at most five seconds for open scrapes.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("Failed to stop metrics server", "error", err)
	}
}
