package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher invalidates store caches when the backing files change on disk,
// so edits made outside the process (or by another replica sharing the
// volume) become visible without a restart.
type Watcher struct {
	watcher  *fsnotify.Watcher
	themes   *ThemeStore
	maps     *MapStore
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher over the data directory containing both
// store files. The directory is created when missing so fsnotify has
// something to attach to.
func NewWatcher(themes *ThemeStore, maps *MapStore) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		watcher: fw,
		themes:  themes,
		maps:    maps,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching. It returns an error when the data directory
// cannot be created or watched.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.themes.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch data directory: %w", err)
	}

	go w.eventLoop()

	log.Info().Str("dir", dir).Msg("Data store watcher started")
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			switch event.Name {
			case w.themes.Path():
				w.themes.Invalidate()
				log.Debug().Str("file", event.Name).Msg("Theme cache invalidated")
			case w.maps.Path():
				w.maps.Invalidate()
				log.Debug().Str("file", event.Name).Msg("Map data cache invalidated")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Data store watcher error")
		}
	}
}
