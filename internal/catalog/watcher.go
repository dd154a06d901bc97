package catalog

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Store is a swappable catalog holder safe for concurrent readers. Handlers
// read the current catalog per request; the watcher swaps in a new one when
// the override file changes.
type Store struct {
	mu      sync.RWMutex
	current *Catalog
}

// NewStore creates a store holding the given catalog.
func NewStore(c *Catalog) *Store {
	return &Store{current: c}
}

// Current returns the catalog in effect.
func (s *Store) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace swaps in a new catalog.
func (s *Store) Replace(c *Catalog) {
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
}

// Watcher reloads a catalog override file into a Store when it changes on
// disk. A failed reload keeps the previous catalog in effect.
type Watcher struct {
	path    string
	store   *Store
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for the given catalog file.
func NewWatcher(path string, store *Store) *Watcher {
	return &Watcher{
		path:  path,
		store: store,
		done:  make(chan struct{}),
	}
}

// Start begins watching. The containing directory is watched (not the file
// itself) so that editors that replace the file via rename are still seen.
// Call Stop to clean up.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return err
	}
	w.watcher = fw

	go w.loop()
	log.Printf("catalog: watching %s for changes", w.path)
	return nil
}

// Stop halts the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("catalog: watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	c, err := LoadFile(w.path)
	if err != nil {
		log.Printf("catalog: reload failed, keeping previous catalog: %v", err)
		return
	}
	w.store.Replace(c)
	log.Printf("catalog: reloaded %s (%d types)", w.path, c.Len())
}
