package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the name of the cache file inside the cache directory.
const FileName = "lookups.toml"

// FileStore is a Store persisted as a TOML file with one table per Kind:
//
//	[members]
//	alice = "5f3b..."
//
//	[story_states]
//	"In Progress" = "500000012"
//
// The file is read on first access and rewritten on every Put or PutAll.
type FileStore struct {
	mu      sync.Mutex
	path    string
	loaded  bool
	entries map[string]map[string]string
}

var _ Store = &FileStore{}

// NewFileStore creates a FileStore backed by FileName inside dir. The directory is created on the
// first Put.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, FileName)}
}

// Path returns the location of the cache file.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the id stored for name, or ErrNotFound.
func (s *FileStore) Get(kind Kind, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return "", err
	}
	id, ok := s.entries[string(kind)][name]
	if !ok {
		return "", ErrNotFound
	}

	return id, nil
}

// Put stores id for name and persists the whole cache.
func (s *FileStore) Put(kind Kind, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	if s.entries[string(kind)] == nil {
		s.entries[string(kind)] = map[string]string{}
	}
	s.entries[string(kind)][name] = id

	return s.save()
}

// PutAll stores every entry and persists the cache once.
func (s *FileStore) PutAll(kind Kind, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	if s.entries[string(kind)] == nil {
		s.entries[string(kind)] = make(map[string]string, len(entries))
	}
	maps.Copy(s.entries[string(kind)], entries)

	return s.save()
}

func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}

	s.entries = map[string]map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}
	if err := toml.Unmarshal(data, &s.entries); err != nil {
		return fmt.Errorf("failed to parse cache file %s: %w", s.path, err)
	}
	s.loaded = true

	return nil
}

func (s *FileStore) save() error {
	data, err := toml.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	return os.WriteFile(s.path, data, 0600)
}
