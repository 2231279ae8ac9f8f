// Package daemon assembles the Agora service: configuration, logging,
// data stores, the tool registry, the session registry and the HTTP
// server, with a managed lifecycle.
package daemon

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pacifico/agora/internal/config"
	"github.com/pacifico/agora/internal/logger"
	"github.com/pacifico/agora/internal/server"
	"github.com/pacifico/agora/pkg/auth"
	"github.com/pacifico/agora/pkg/brain"
	"github.com/pacifico/agora/pkg/store"
	"github.com/pacifico/agora/pkg/tools"
	"github.com/pacifico/agora/pkg/transcript"
)

// Daemon represents the Agora daemon service.
type Daemon struct {
	config *config.Config
	logger *logger.Logger

	themes      *store.ThemeStore
	maps        *store.MapStore
	watcher     *store.Watcher
	registry    *brain.Registry
	transcripts *transcript.Store
	server      *server.Server
}

// New wires the daemon from a validated configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	themes := store.NewThemeStore(filepath.Join(cfg.DataDir, "theme.json"))
	maps := store.NewMapStore(filepath.Join(cfg.DataDir, "map_data.json"))

	watcher, err := store.NewWatcher(themes, maps)
	if err != nil {
		return nil, fmt.Errorf("failed to create data watcher: %w", err)
	}

	deps := tools.Deps{Themes: themes, Maps: maps}
	if cfg.Auth.BaseURL != "" {
		provisioner, err := auth.NewClient(auth.Config{
			BaseURL:    cfg.Auth.BaseURL,
			ServiceKey: cfg.Auth.ServiceKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create auth client: %w", err)
		}
		deps.Provisioner = provisioner
	}

	transcripts, err := transcript.NewStore(filepath.Join(cfg.DataDir, "transcripts"))
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript store: %w", err)
	}

	toolReg, err := tools.NewDefaultRegistry(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	registry, err := brain.NewRegistry(brain.RegistryConfig{
		Tools:          toolReg,
		Backends:       brain.NewBackendFactory(cfg.Credentials(), time.Duration(cfg.Session.SimulatedLatencyMS)*time.Millisecond),
		Recorder:       transcripts,
		Logger:         *lg.GetZerolog(),
		BackendTimeout: time.Duration(cfg.Session.BackendTimeoutSeconds) * time.Second,
		IdleTTL:        time.Duration(cfg.Session.IdleTTLHours) * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session registry: %w", err)
	}

	srv, err := server.NewServer(server.Options{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		RatePerMinute: cfg.Server.RatePerMinute,
	}, registry, themes, maps, *lg.GetZerolog())
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return &Daemon{
		config:      cfg,
		logger:      lg,
		themes:      themes,
		maps:        maps,
		watcher:     watcher,
		registry:    registry,
		transcripts: transcripts,
		server:      srv,
	}, nil
}

// Registry exposes the session registry, mainly for the chat REPL.
func (d *Daemon) Registry() *brain.Registry {
	return d.registry
}

// Run starts every component and blocks until SIGINT or SIGTERM.
func (d *Daemon) Run() error {
	if err := d.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	d.logger.GetZerolog().Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	return d.Stop()
}

// Start launches the background components and the HTTP listener.
func (d *Daemon) Start() error {
	if err := d.watcher.Start(); err != nil {
		return fmt.Errorf("failed to start data watcher: %w", err)
	}
	if err := d.registry.StartMaintenance(); err != nil {
		return fmt.Errorf("failed to start session maintenance: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.server.Start()
	}()

	// Give the listener a moment to fail fast on a bad address.
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-time.After(100 * time.Millisecond):
	}

	d.logger.GetZerolog().Info().
		Str("data_dir", d.config.DataDir).
		Int("port", d.config.Server.Port).
		Msg("Agora daemon started")
	return nil
}

// Stop shuts the components down in reverse order.
func (d *Daemon) Stop() error {
	var firstErr error

	if err := d.server.Stop(); err != nil {
		firstErr = err
	}
	d.registry.StopMaintenance()
	d.watcher.Stop()
	if err := d.transcripts.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	d.logger.GetZerolog().Info().Msg("Agora daemon stopped")
	if err := d.logger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
