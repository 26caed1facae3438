// Package memory provides a process-local ports.KVStore. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tradeSimulator/internal/ports"
)

// Store is a map-backed key-value store.
type Store struct {
	mu       sync.RWMutex
	data     map[string][]byte
	writeErr error // Returned by every write while set
	closed   bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, ports.ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// SetMany stores all entries under one lock.
func (s *Store) SetMany(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	for k, v := range entries {
		s.data[k] = append([]byte(nil), v...)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return err
	}
	delete(s.data, key)
	return nil
}

// Close marks the store closed. Later writes fail; reads keep working.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// FailWrites makes every following Set, SetMany and Delete return err
// without changing the data. A nil err restores normal writes.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *Store) writable() error {
	if s.closed {
		return fmt.Errorf("memory store is closed: %w", ports.ErrDBConnection)
	}
	if s.writeErr != nil {
		return fmt.Errorf("%w: %v", ports.ErrUpdateFailed, s.writeErr)
	}
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
