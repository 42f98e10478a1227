// Package inventory keeps the list of exercise names offered for manual
// entry, independent of the remote catalog.
package inventory

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrEmptyName = errors.New("exercise name is empty")
	ErrNotFound  = errors.New("exercise not in inventory")
)

// Store is an ordered set of exercise names. Names are unique ignoring case
// and keep the spelling they were first added with.
type Store struct {
	mu    sync.RWMutex
	names []string
}

// New returns a store seeded with names. Blank and duplicate seeds are
// skipped.
func New(names ...string) *Store {
	s := &Store{}
	for _, n := range names {
		_, _ = s.Add(n)
	}
	return s
}

// Add appends name unless an equal name is already present. It reports
// whether the name was added.
func (s *Store) Add(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(name) >= 0 {
		return false, nil
	}
	s.names = append(s.names, name)
	return true, nil
}

// Remove deletes name, ignoring case.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(strings.TrimSpace(name))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.names = append(s.names[:i], s.names[i+1:]...)
	return nil
}

func (s *Store) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(strings.TrimSpace(name)) >= 0
}

// List returns a copy of the names in insertion order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.names...)
}

func (s *Store) indexLocked(name string) int {
	for i, n := range s.names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}
