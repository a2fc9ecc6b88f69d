// Package memory provides a map-backed output.KVStore.
package memory

import (
	"context"
	"slices"
	"sync"

	"meeplebar/internal/ports/output"
)

var (
	_ output.KVStore = (*Store)(nil)
	_ output.Locker  = (*Store)(nil)
)

// Store keeps values in process memory. Put failures can be injected per key.
type Store struct {
	lock    chan struct{}
	mu      sync.RWMutex
	values  map[string][]byte
	failPut map[string]error
	puts    int
}

func NewStore() *Store {
	return &Store{
		lock:    make(chan struct{}, 1),
		values:  make(map[string][]byte),
		failPut: make(map[string]error),
	}
}

// Lock serializes the holders of this store, like a database lock would
// serialize processes.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	select {
	case s.lock <- struct{}{}:
		return func() { <-s.lock }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, output.ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failPut[key]; err != nil {
		return err
	}
	s.values[key] = slices.Clone(value)
	s.puts++
	return nil
}

// FailPut makes every later Put on key return err. A nil err clears it.
func (s *Store) FailPut(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failPut, key)
		return
	}
	s.failPut[key] = err
}

// Puts reports how many writes succeeded.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
