package inspection

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CatalogProvider supplies the catalog used for the next expansion.
type CatalogProvider interface {
	Current() *Catalog
}

// CatalogSource is a reloadable catalog backed by a TOML file. Records that
// were already built keep their items; only new expansions see a reload.
type CatalogSource struct {
	path string

	mu      sync.RWMutex
	current *Catalog
}

// NewCatalogSource loads path, or serves the default catalog when path is
// empty.
func NewCatalogSource(path string) (*CatalogSource, error) {
	s := &CatalogSource{path: path, current: DefaultCatalog()}
	if path == "" {
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CatalogSource) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload re-reads the catalog file. On error the previous catalog stays live.
func (s *CatalogSource) Reload() error {
	if s.path == "" {
		return nil
	}
	cat, err := LoadCatalog(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = cat
	s.mu.Unlock()
	return nil
}

// Watch reloads the catalog whenever its file is written, until ctx is done.
func (s *CatalogSource) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory too so editors that replace the file are seen.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	log.Printf("👁  Watching checklist catalog %s", s.path)

	var debounce *time.Timer
	const debounceDelay = 500 * time.Millisecond
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				if err := s.Reload(); err != nil {
					log.Printf("⚠️  Checklist catalog reload failed, keeping previous: %v", err)
					return
				}
				log.Printf("✅ Checklist catalog reloaded from %s", s.path)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Catalog watch error: %v", err)
		}
	}
}
