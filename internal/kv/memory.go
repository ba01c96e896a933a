package kv

import (
	"bytes"
	"sync"

	"shelf-go/internal/shelf"
)

// MemoryStore is an in-memory implementation of the shelf.Store interface.
// Values are copied on the way in and out so callers cannot alias stored data.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, shelf.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = bytes.Clone(value)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// Compile-time check that MemoryStore implements shelf.Store interface
var _ shelf.Store = (*MemoryStore)(nil)
