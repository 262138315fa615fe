package memory

import "sync"

// Store maps string keys to string values. It is created once at
// process start and shared by every connection.
type Store struct {
	mu    sync.RWMutex
	items map[string]string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		items: make(map[string]string),
	}
}

// Get returns the value stored for key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

// Set inserts or overwrites the value for key. Concurrent writers to
// the same key are serialized; the last one to take the lock wins.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	n := len(s.items)
	s.mu.RUnlock()
	return n
}
