package testutil

import (
	"errors"
	"sync"
	"testing"

	"shelf-go/internal/kv"
	"shelf-go/internal/shelf"
)

// ErrInjected is the error FailingStore returns for a failed operation.
var ErrInjected = errors.New("injected storage failure")

// NewTestStore creates an in-memory store that is closed when the test completes.
func NewTestStore(t *testing.T) *kv.MemoryStore {
	t.Helper()
	s := kv.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return s
}

// FailingStore wraps a Store and fails selected operations on demand.
// Safe for concurrent use.
type FailingStore struct {
	shelf.Store

	mu      sync.Mutex
	failGet map[string]bool
	failSet map[string]bool
	sets    int
}

// NewFailingStore wraps inner. Nothing fails until FailGet or FailSet is called.
func NewFailingStore(inner shelf.Store) *FailingStore {
	return &FailingStore{
		Store:   inner,
		failGet: make(map[string]bool),
		failSet: make(map[string]bool),
	}
}

// FailGet makes Get fail for the given keys, or for every key if none are given.
func (s *FailingStore) FailGet(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mark(s.failGet, keys)
}

// FailSet makes Set fail for the given keys, or for every key if none are given.
func (s *FailingStore) FailSet(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mark(s.failSet, keys)
}

// Heal clears every injected failure.
func (s *FailingStore) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.failGet)
	clear(s.failSet)
}

// Sets returns the number of successful Set calls.
func (s *FailingStore) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func (s *FailingStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	fail := s.failGet[key] || s.failGet[""]
	s.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return s.Store.Get(key)
}

func (s *FailingStore) Set(key string, value []byte) error {
	s.mu.Lock()
	fail := s.failSet[key] || s.failSet[""]
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	if err := s.Store.Set(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.sets++
	s.mu.Unlock()
	return nil
}

func mark(m map[string]bool, keys []string) {
	if len(keys) == 0 {
		m[""] = true
		return
	}
	for _, k := range keys {
		m[k] = true
	}
}

var _ shelf.Store = (*FailingStore)(nil)
