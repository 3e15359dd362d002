// Package cache stores name to id mappings looked up from the remote API so repeated runs do not
// have to list members, groups or workflow states again.
package cache

import (
	"errors"
	"maps"
	"sync"
)

// ErrNotFound is returned by Get when the store has no entry for a name.
var ErrNotFound = errors.New("cache entry not found")

// Kind namespaces cache entries.
type Kind string

const (
	KindMember           Kind = "members"
	KindGroup            Kind = "groups"
	KindLabel            Kind = "labels"
	KindStoryState       Kind = "story_states"
	KindEpicState        Kind = "epic_states"
	KindCustomField      Kind = "custom_fields"
	KindCustomFieldValue Kind = "custom_field_values"
)

// Store is a get/put mapping of names to ids, namespaced by Kind.
// Implementations are last-writer-wins; callers do not rely on transactions.
type Store interface {
	Get(kind Kind, name string) (string, error)
	Put(kind Kind, name, id string) error
	// PutAll stores every name to id pair of entries in one write.
	PutAll(kind Kind, entries map[string]string) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Kind]map[string]string
}

var _ Store = &MemoryStore{}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[Kind]map[string]string{}}
}

// Get returns the id stored for name, or ErrNotFound.
func (s *MemoryStore) Get(kind Kind, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entries[kind][name]
	if !ok {
		return "", ErrNotFound
	}

	return id, nil
}

// Put stores id for name, replacing any existing entry.
func (s *MemoryStore) Put(kind Kind, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[kind] == nil {
		s.entries[kind] = map[string]string{}
	}
	s.entries[kind][name] = id

	return nil
}

// PutAll stores every entry, replacing existing ones.
func (s *MemoryStore) PutAll(kind Kind, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[kind] == nil {
		s.entries[kind] = make(map[string]string, len(entries))
	}
	maps.Copy(s.entries[kind], entries)

	return nil
}
