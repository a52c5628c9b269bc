package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/veoflow/server/internal/shared/errors"
)

// FileStore persists gallery entries as a single JSON array document.
// Writes replace the whole document atomically; a mutex serializes
// concurrent appends so parallel polls cannot interleave read-modify-write
// cycles.
type FileStore struct {
	mu         sync.Mutex
	path       string
	maxEntries int
	logger     *zap.Logger
	now        func() time.Time
}

// FileStoreConfig holds file store configuration.
type FileStoreConfig struct {
	Path       string
	MaxEntries int
	Logger     *zap.Logger
}

// NewFileStore creates a new file-backed gallery store.
func NewFileStore(cfg *FileStoreConfig) *FileStore {
	s := &FileStore{
		path:       cfg.Path,
		maxEntries: cfg.MaxEntries,
		logger:     cfg.Logger,
		now:        time.Now,
	}
	if s.path == "" {
		s.path = filepath.Join("data", "gallery.json")
	}
	if s.maxEntries <= 0 {
		s.maxEntries = DefaultMaxEntries
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Append stamps the entries with the current time and adds them to the
// gallery, dropping the oldest entries beyond the cap. Entries whose
// operation name is already recorded are skipped, so re-polling a finished
// operation does not duplicate its videos.
func (s *FileStore) Append(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.load()

	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		if e.Operation != "" {
			seen[e.Operation] = struct{}{}
		}
	}

	now := s.now()
	appended := 0
	for _, e := range entries {
		if e.Operation != "" {
			if _, dup := seen[e.Operation]; dup {
				continue
			}
		}
		e.Timestamp = now.Unix()
		e.Date = now.Format(dateLayout)
		existing = append(existing, e)
		appended++
	}
	if appended == 0 {
		return nil
	}

	if len(existing) > s.maxEntries {
		existing = existing[len(existing)-s.maxEntries:]
	}

	if err := s.write(existing); err != nil {
		return apperrors.Store("failed to save gallery", err)
	}
	return nil
}

// List returns the gallery entries newest first. A missing or unreadable
// file yields an empty list rather than an error.
func (s *FileStore) List() []Entry {
	s.mu.Lock()
	entries := s.load()
	s.mu.Unlock()

	// Stored oldest first; serve newest first.
	reversed := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		reversed = append(reversed, entries[i])
	}
	return reversed
}

// Len returns the current number of stored entries.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.load())
}

// load reads the document, falling back to empty on any failure. Callers
// must hold the mutex.
func (s *FileStore) load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read gallery file", zap.String("path", s.path), zap.Error(err))
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("gallery file is corrupt, starting empty", zap.String("path", s.path), zap.Error(err))
		return nil
	}
	return entries
}

// write replaces the document via a temp file and rename so readers never
// observe a partial write. Callers must hold the mutex.
func (s *FileStore) write(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create gallery directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode gallery: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".gallery-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace gallery file: %w", err)
	}
	return nil
}
