// Package library implements the saved-tracks ("starred") store. Saved track
// IDs are persisted as JSON in the config directory and hot-reloaded when the
// file is edited externally.
package library

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ncspot/mprisd/internal/models"
)

const (
	savedFileName = "saved_tracks.json"
	debounceDelay = 500 * time.Millisecond
)

// Store holds the set of saved track IDs.
type Store struct {
	mu      sync.RWMutex
	path    string
	ids     map[string]bool
	watcher *fsnotify.Watcher
	timer   *time.Timer
	dirty   bool
}

// New creates a store backed by saved_tracks.json in configDir and starts
// watching the file for external changes.
func New(configDir string) (*Store, error) {
	s := &Store{
		path: filepath.Join(configDir, savedFileName),
		ids:  make(map[string]bool),
	}

	// Load initial state (missing file is OK — empty library)
	if err := s.Reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Watch for changes
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("library: could not create fsnotify watcher", "err", err)
		return s, nil
	}
	s.watcher = watcher

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		slog.Warn("library: could not watch config dir", "err", err)
	}

	go s.watchLoop()
	return s, nil
}

// Path returns the file path used by this store.
func (s *Store) Path() string { return s.path }

// Reload re-reads the saved-tracks file.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.ids = make(map[string]bool)
			s.mu.Unlock()
			return nil
		}
		return err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	s.mu.Lock()
	s.ids = set
	s.mu.Unlock()
	slog.Debug("library: reloaded saved tracks", "count", len(ids))
	return nil
}

// IsSavedTrack reports whether the track is in the saved set.
// Always false for a nil track or a track without an ID.
func (s *Store) IsSavedTrack(t *models.Track) bool {
	if t == nil || t.ID == "" {
		return false
	}
	return s.IsSaved(t.ID)
}

// IsSaved reports whether the given track ID is in the saved set.
func (s *Store) IsSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[id]
}

// SaveTrack adds a track ID to the saved set and schedules a write.
func (s *Store) SaveTrack(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids[id] {
		return
	}
	s.ids[id] = true
	s.scheduleSaveLocked()
}

// RemoveTrack removes a track ID from the saved set and schedules a write.
func (s *Store) RemoveTrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ids[id] {
		return
	}
	delete(s.ids, id)
	s.scheduleSaveLocked()
}

// scheduleSaveLocked schedules a debounced write. The actual write happens
// after 500ms of no further mutations.
func (s *Store) scheduleSaveLocked() {
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounceDelay, func() {
		if err := s.Flush(); err != nil {
			slog.Error("library: failed to write saved tracks", "path", s.path, "err", err)
		}
	})
}

// Flush forces an immediate write of any pending changes.
func (s *Store) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	s.dirty = false
	s.mu.Unlock()

	sort.Strings(ids)
	return writeAtomic(s.path, ids)
}

// Close flushes pending changes and stops the file watcher.
func (s *Store) Close() {
	if err := s.Flush(); err != nil {
		slog.Warn("library: flush on close failed", "err", err)
	}
	if s.watcher != nil {
		s.watcher.Close()
	}
}

func (s *Store) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name == s.path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				if err := s.Reload(); err != nil {
					slog.Warn("library: failed to reload saved tracks", "err", err)
				}
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("library: watcher error", "err", err)
		}
	}
}

// writeAtomic writes to a temp file, then renames (atomic on Linux).
func writeAtomic(path string, ids []string) error {
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
