package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore implements Store with an in-process map. This is the default
// session-scoped store; it is thread-safe and suitable for tests and for
// hosts that keep one store per user session.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]string),
	}
}

// Set persists value under key; an empty value deletes the entry.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == "" {
		delete(s.entries, key)
		return nil
	}
	s.entries[key] = value
	return nil
}

// Get returns the value for key, or "" when absent.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.entries[key], nil
}

// Delete removes one entry; absent keys are a no-op.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix.
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
	return nil
}

// Len reports the number of stored entries. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
