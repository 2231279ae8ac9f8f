package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Marker is an opaque map marker. The GUI defines its shape; the store
// only guarantees valid JSON.
type Marker = json.RawMessage

// MapStore reads the role-keyed marker file (typically data/map_data.json).
type MapStore struct {
	path string

	mu     sync.RWMutex
	cached map[string][]Marker
}

// NewMapStore creates a store backed by path.
func NewMapStore(path string) *MapStore {
	return &MapStore{path: path}
}

// Path returns the backing file path.
func (s *MapStore) Path() string {
	return s.path
}

// MarkersFor returns the markers for a role, falling back to the "default"
// key when the role is absent. A missing backing file is an explicit error
// value, not a panic.
func (s *MapStore) MarkersFor(role string) ([]Marker, error) {
	all, err := s.load()
	if err != nil {
		return nil, err
	}

	if markers, ok := all[role]; ok {
		return markers, nil
	}
	if markers, ok := all["default"]; ok {
		return markers, nil
	}
	return []Marker{}, nil
}

func (s *MapStore) load() (map[string][]Marker, error) {
	s.mu.RLock()
	if s.cached != nil {
		all := s.cached
		s.mu.RUnlock()
		return all, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("el archivo de datos del mapa no existe")
		}
		return nil, fmt.Errorf("failed to read map data: %w", err)
	}

	var all map[string][]Marker
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("map data is not valid JSON: %w", err)
	}

	s.cached = all
	return all, nil
}

// Invalidate drops the cached markers so the next read rereads the file.
func (s *MapStore) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
