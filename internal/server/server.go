// Package server exposes the conversational brain over HTTP: a chat
// endpoint that fronts the session registry, read endpoints for theme
// and map data, plus health and metrics.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pacifico/agora/internal/observability"
	"github.com/pacifico/agora/pkg/brain"
	"github.com/pacifico/agora/pkg/store"
)

// Options configures the HTTP server.
type Options struct {
	Host          string
	Port          int
	RatePerMinute int
}

// Server is the Agora HTTP server.
type Server struct {
	options     Options
	server      *http.Server
	registry    *brain.Registry
	themes      *store.ThemeStore
	maps        *store.MapStore
	rateLimiter *RateLimiter
	logger      zerolog.Logger
	startTime   time.Time

	isShuttingDown bool
	shutdownMu     sync.RWMutex
	inFlightReqs   sync.WaitGroup
}

// NewServer creates the HTTP server.
func NewServer(options Options, registry *brain.Registry, themes *store.ThemeStore, maps *store.MapStore, logger zerolog.Logger) (*Server, error) {
	if options.Port == 0 {
		options.Port = 8080
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.RatePerMinute == 0 {
		options.RatePerMinute = 60
	}

	if registry == nil {
		return nil, fmt.Errorf("session registry is required")
	}
	if themes == nil {
		return nil, fmt.Errorf("theme store is required")
	}
	if maps == nil {
		return nil, fmt.Errorf("map store is required")
	}

	return &Server{
		options:     options,
		registry:    registry,
		themes:      themes,
		maps:        maps,
		rateLimiter: NewRateLimiter(options.RatePerMinute),
		logger:      logger,
		startTime:   time.Now(),
	}, nil
}

// Handler returns the routed handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/chat", s.limited(s.handleChat))
	mux.HandleFunc("/session", s.limited(s.handleCreateSession))
	mux.HandleFunc("/theme", s.limited(s.handleTheme))
	mux.HandleFunc("/map_data", s.limited(s.handleMapData))
	mux.HandleFunc("/usage", s.limited(s.handleUsage))

	return mux
}

// Start runs the server until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler: s.Handler(),
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down HTTP server")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	}

	s.rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// limited wraps a handler with shutdown tracking and per-IP rate
// limiting.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.shutdownMu.RLock()
		shuttingDown := s.isShuttingDown
		s.shutdownMu.RUnlock()
		if shuttingDown {
			writeError(w, http.StatusServiceUnavailable, "El servidor se está apagando.")
			return
		}

		s.inFlightReqs.Add(1)
		defer s.inFlightReqs.Done()

		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		ip := clientIP(r)
		if !s.rateLimiter.CheckLimit(ip) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", s.rateLimiter.GetRetryAfter(ip)))
			writeError(w, http.StatusTooManyRequests, "Demasiadas solicitudes. Intenta de nuevo más tarde.")
			return
		}

		next(w, r)
	}
}
