package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeStore_DefaultWhenAbsent(t *testing.T) {
	s := NewThemeStore(filepath.Join(t.TempDir(), "theme.json"))

	got := s.Get()
	assert.Equal(t, DefaultTheme, got)
	assert.Equal(t, "#1E3A8A", got.Primary)
	assert.Equal(t, "#FBBF24", got.Accent)
}

func TestThemeStore_SetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "theme.json")
	s := NewThemeStore(path)

	want := Theme{Primary: "#000000", Accent: "#FFFFFF"}
	require.NoError(t, s.Set(want))
	assert.Equal(t, want, s.Get())

	// No leftover temp file from the atomic write.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	// A fresh store reads the same palette back from disk.
	again := NewThemeStore(path)
	assert.Equal(t, want, again.Get())
}

func TestThemeStore_SetRejectsIncomplete(t *testing.T) {
	s := NewThemeStore(filepath.Join(t.TempDir(), "theme.json"))

	assert.Error(t, s.Set(Theme{Primary: "#000000"}))
	assert.Error(t, s.Set(Theme{Accent: "#FFFFFF"}))
}

func TestThemeStore_InvalidFileServesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewThemeStore(path)
	assert.Equal(t, DefaultTheme, s.Get())
}

func writeMapData(t *testing.T, dir string, data map[string][]map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, "map_data.json")
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestMapStore_RoleAndDefaultFallback(t *testing.T) {
	path := writeMapData(t, t.TempDir(), map[string][]map[string]any{
		"candidato": {{"lat": 3.45, "lng": -76.53, "label": "Sede Norte"}},
		"default":   {{"lat": 0.0, "lng": 0.0, "label": "Centro"}},
	})
	s := NewMapStore(path)

	markers, err := s.MarkersFor("candidato")
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Contains(t, string(markers[0]), "Sede Norte")

	markers, err = s.MarkersFor("votante")
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Contains(t, string(markers[0]), "Centro")
}

func TestMapStore_MissingFileIsAnError(t *testing.T) {
	s := NewMapStore(filepath.Join(t.TempDir(), "map_data.json"))

	_, err := s.MarkersFor("lider")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no existe")
}

func TestMapStore_NoDefaultKeyYieldsEmpty(t *testing.T) {
	path := writeMapData(t, t.TempDir(), map[string][]map[string]any{
		"lider": {},
	})
	s := NewMapStore(path)

	markers, err := s.MarkersFor("votante")
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestWatcher_InvalidatesThemeCache(t *testing.T) {
	dir := t.TempDir()
	themePath := filepath.Join(dir, "theme.json")
	themes := NewThemeStore(themePath)
	maps := NewMapStore(filepath.Join(dir, "map_data.json"))

	require.NoError(t, themes.Set(Theme{Primary: "#111111", Accent: "#222222"}))
	require.Equal(t, "#111111", themes.Get().Primary)

	w, err := NewWatcher(themes, maps)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	// Simulate an external edit.
	raw, err := json.Marshal(Theme{Primary: "#333333", Accent: "#444444"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(themePath, raw, 0o644))

	assert.Eventually(t, func() bool {
		return themes.Get().Primary == "#333333"
	}, 2*time.Second, 20*time.Millisecond)
}
