// Package api exposes the presence registry over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/benmeehan/status-monitor/internal/ingest"
	"github.com/benmeehan/status-monitor/internal/presence"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server routes heartbeat, status and health requests to the registry.
type Server struct {
	router    *mux.Router
	registry  *presence.Registry
	processor *ingest.Processor
	logger    zerolog.Logger
	clock     presence.Clock
	startTime time.Time
	staticDir string

	metricsPath    string
	metricsHandler http.Handler
}

// NewServer creates the HTTP handler tree for registry.
func NewServer(registry *presence.Registry, processor *ingest.Processor, logger zerolog.Logger,
	options ...func(*Server)) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		registry:  registry,
		processor: processor,
		logger:    logger,
		clock:     presence.SystemClock,
	}

	for _, o := range options {
		o(s)
	}
	if s.startTime.IsZero() {
		s.startTime = s.clock()
	}

	s.setupRoutes()

	return s
}

// WithClock replaces the time source used for status and health responses.
func WithClock(clock presence.Clock) func(*Server) {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithStartTime sets the process start time reported by the health endpoint.
func WithStartTime(t time.Time) func(*Server) {
	return func(s *Server) {
		s.startTime = t
	}
}

// WithStaticDir serves the dashboard from dir instead of the embedded copy.
func WithStaticDir(dir string) func(*Server) {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// WithMetricsHandler exposes h (usually a promhttp handler) at path.
func WithMetricsHandler(path string, h http.Handler) func(*Server) {
	return func(s *Server) {
		s.metricsPath = path
		s.metricsHandler = h
	}
}

func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware, s.loggingMiddleware, s.recoveryMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ping", s.handlePing).Methods(http.MethodPost)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metricsHandler != nil && s.metricsPath != "" {
		s.router.Handle(s.metricsPath, s.metricsHandler).Methods(http.MethodGet)
	}
	s.router.PathPrefix("/").Handler(s.staticHandler()).Methods(http.MethodGet, http.MethodHead)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
