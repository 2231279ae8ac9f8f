// Package store holds the process-wide file-backed configuration: the UI
// color palette and the map marker data. Files are read often and written
// rarely; writes go through a temp file and an atomic rename so readers
// never observe a partially written file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Theme is the UI color palette. Both keys are required.
type Theme struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

// DefaultTheme is served when no palette has been configured.
var DefaultTheme = Theme{Primary: "#1E3A8A", Accent: "#FBBF24"}

// ThemeStore reads and writes the palette file.
type ThemeStore struct {
	path string

	mu     sync.RWMutex
	cached *Theme
}

// NewThemeStore creates a store backed by path (typically data/theme.json).
func NewThemeStore(path string) *ThemeStore {
	return &ThemeStore{path: path}
}

// Path returns the backing file path.
func (s *ThemeStore) Path() string {
	return s.path
}

// Get returns the configured theme, or DefaultTheme when the backing file
// is absent or unreadable.
func (s *ThemeStore) Get() Theme {
	s.mu.RLock()
	if s.cached != nil {
		t := *s.cached
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return *s.cached
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return DefaultTheme
	}

	var t Theme
	if err := json.Unmarshal(data, &t); err != nil || t.Primary == "" || t.Accent == "" {
		log.Warn().Str("path", s.path).Msg("Theme file is invalid, serving default")
		return DefaultTheme
	}

	s.cached = &t
	return t
}

// Set persists a new theme atomically and refreshes the cache.
func (s *ThemeStore) Set(t Theme) error {
	if t.Primary == "" || t.Accent == "" {
		return fmt.Errorf("theme requires both primary and accent colors")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write theme temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace theme file: %w", err)
	}

	s.cached = &t
	log.Info().Str("primary", t.Primary).Str("accent", t.Accent).Msg("Theme updated")
	return nil
}

// Invalidate drops the cached theme so the next Get rereads the file.
func (s *ThemeStore) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
