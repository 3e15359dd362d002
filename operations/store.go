package operations

import (
	"fmt"

	"github.com/shortcut-cli/sc/resolver"
)

// AliasStore holds the result of every aliased operation of a run, in the order they were stored.
// Entries are never replaced or removed.
type AliasStore struct {
	order  []string
	values map[string]any
}

var _ resolver.Store = (*AliasStore)(nil)

// NewAliasStore creates an empty AliasStore.
func NewAliasStore() *AliasStore {
	return &AliasStore{values: map[string]any{}}
}

// Set stores value under alias. Storing the same alias twice is an error.
func (s *AliasStore) Set(alias string, value any) error {
	if _, exists := s.values[alias]; exists {
		return fmt.Errorf("alias %q is already defined", alias)
	}
	s.order = append(s.order, alias)
	s.values[alias] = value

	return nil
}

// Lookup implements resolver.Store.
func (s *AliasStore) Lookup(alias string) (any, bool) {
	v, ok := s.values[alias]
	return v, ok
}

// Aliases returns the stored aliases in insertion order.
func (s *AliasStore) Aliases() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of stored aliases.
func (s *AliasStore) Len() int {
	return len(s.order)
}
