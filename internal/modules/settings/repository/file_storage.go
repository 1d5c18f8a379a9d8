package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	"github.com/subonly/gate/internal/modules/settings/domain"
)

// settingsFile is the single namespace all settings live under.
const settingsFile = "settings.json"

// FileStorage implements settings.Repository using the file system.
type FileStorage struct {
	path string
	mu   sync.RWMutex
}

// NewFileStorage creates a new file-based settings repository.
func NewFileStorage(basePath string) (Repository, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create storage directory").Wrap(err)
	}

	return &FileStorage{path: filepath.Join(basePath, settingsFile)}, nil
}

func (s *FileStorage) Load() (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load()
}

func (s *FileStorage) Save(settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(settings)
}

// Update applies fn to the current settings and persists the result, holding
// the write lock for the whole cycle. An error from fn leaves the stored
// settings untouched.
func (s *FileStorage) Update(fn func(settings *domain.Settings) error) (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		return nil, err
	}

	if err := fn(settings); err != nil {
		return nil, err
	}

	if err := s.save(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// load reads without locking; callers hold the lock. A missing file yields
// the first-run defaults rather than an error.
func (s *FileStorage) load() (*domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Default(), nil
		}
		return nil, oops.With("path", s.path, "context", "failed to read settings").Wrap(err)
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, oops.With("path", s.path, "context", "failed to unmarshal settings").Wrap(err)
	}

	return &settings, nil
}

func (s *FileStorage) save(settings *domain.Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return oops.With("path", s.path, "context", "failed to marshal settings").Wrap(err)
	}

	return os.WriteFile(s.path, data, 0644)
}
