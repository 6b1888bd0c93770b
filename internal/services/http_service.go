package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/benmeehan/status-monitor/internal/constants"
	"github.com/rs/zerolog"
)

// HTTPService serves an http.Handler until stopped.
type HTTPService struct {
	Addr            string
	ShutdownTimeout time.Duration
	Logger          zerolog.Logger

	handler      http.Handler
	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration

	server   *http.Server
	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

// NewHTTPService initializes a new HTTPService listening on addr.
func NewHTTPService(addr string, handler http.Handler, readTimeout, writeTimeout, idleTimeout,
	shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = constants.DefaultShutdownTimeout
	}
	return &HTTPService{
		Addr:            addr,
		ShutdownTimeout: shutdownTimeout,
		Logger:          logger,
		handler:         handler,
		readTimeout:     readTimeout,
		writeTimeout:    writeTimeout,
		idleTimeout:     idleTimeout,
	}
}

// Start binds the listening socket and serves in a separate goroutine. Bind
// errors are returned here rather than logged from the goroutine.
func (h *HTTPService) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener != nil {
		return errors.New("http service is already running")
	}

	ln, err := net.Listen("tcp", h.Addr)
	if err != nil {
		return err
	}
	h.listener = ln
	h.done = make(chan struct{})
	h.server = &http.Server{
		Handler:           h.handler,
		ReadTimeout:       h.readTimeout,
		ReadHeaderTimeout: h.readTimeout,
		WriteTimeout:      h.writeTimeout,
		IdleTimeout:       h.idleTimeout,
	}

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.Logger.Error().Err(err).Msg("HTTP server stopped unexpectedly")
		}
	}(h.server, h.done)

	h.Logger.Info().Str("addr", ln.Addr().String()).Msg("HTTPService started successfully")
	return nil
}

// ListenAddr returns the bound address, or an empty string when stopped.
func (h *HTTPService) ListenAddr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// Stop shuts the server down, giving in-flight requests up to ShutdownTimeout.
func (h *HTTPService) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener == nil {
		return errors.New("http service is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.ShutdownTimeout)
	defer cancel()

	err := h.server.Shutdown(ctx)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("HTTP shutdown timed out, closing remaining connections")
		err = h.server.Close()
	}
	<-h.done
	h.listener = nil
	h.server = nil

	h.Logger.Info().Msg("HTTPService stopped successfully")
	return err
}
