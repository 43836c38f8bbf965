package keystore

import "sync"

// MemoryStore is an in-memory core.KeyValueStore. It backs tests and
// non-interactive contexts where no durable storage exists.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:     sync.RWMutex{},
		values: make(map[string]string),
	}
}

// Get returns the value for key and whether it was present.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]

	return value, ok
}

// Set stores value under key.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)

	return nil
}

// Available always reports true for the in-memory store.
func (s *MemoryStore) Available() bool {
	return true
}

// UnavailableStore is a core.KeyValueStore for contexts with no durable
// storage at all. Every read reports absence and every write is a no-op.
type UnavailableStore struct{}

// Get always reports absence.
func (UnavailableStore) Get(_ string) (string, bool) { return "", false }

// Set is a no-op.
func (UnavailableStore) Set(_, _ string) error { return nil }

// Remove is a no-op.
func (UnavailableStore) Remove(_ string) error { return nil }

// Available always reports false.
func (UnavailableStore) Available() bool { return false }
