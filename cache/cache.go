// Package cache persists resolved enrichment records between runs.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aluiziolira/go-apps-merge/models"
)

// Store is a durable name -> record map. Entries are created on first
// successful lookup and never overwritten; stale entries stay valid.
// Access is serialized, so concurrent resolvers may race on distinct keys
// without corrupting the mapping.
type Store struct {
	path string

	mu      sync.Mutex
	entries map[string]*models.AppRecord
}

// NewStore builds a store backed by the given file without touching disk.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		entries: make(map[string]*models.AppRecord),
	}
}

// Load reads the backing file into memory. A missing or unparsable file is
// never an error: the store starts empty and logs a warning, so a corrupt
// cache can never abort the pipeline.
func (s *Store) Load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("cache unreadable, starting empty", slog.String("file", s.path), slog.Any("error", err))
		}
		return
	}

	entries := make(map[string]*models.AppRecord)
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("cache corrupt, starting empty", slog.String("file", s.path), slog.Any("error", err))
		return
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	slog.Info("cache loaded", slog.String("file", s.path), slog.Int("entries", len(entries)))
}

// Get returns the cached record for a name, if any.
func (s *Store) Get(name string) (*models.AppRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.entries[name]
	return record, ok
}

// Put stores a record in memory. An existing entry is left untouched.
func (s *Store) Put(name string, record *models.AppRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return
	}
	s.entries[name] = record
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Flush persists the full mapping durably. The snapshot is written to a
// temp file in the same directory, synced, then renamed over the previous
// version: a process killed mid-flush leaves either the old or the new
// content, never a truncated mixture.
func (s *Store) Flush() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory %q: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
