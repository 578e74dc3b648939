package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/flowbuilder/pkg/domain"
)

// Store implements ports.KVStore in memory.
// Safe for concurrent use.
type Store struct {
	data     map[string][]byte
	mu       sync.RWMutex
	maxBytes int
}

// Option configures the Store.
type Option func(*Store)

// WithMaxBytes caps the total size of stored values. Zero means unlimited.
func WithMaxBytes(n int) Option {
	return func(s *Store) {
		s.maxBytes = n
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a copy of data.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	// Copy on write so callers can reuse their buffer
	copied := append([]byte(nil), data...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxBytes > 0 {
		used := len(copied)
		for k, v := range s.data {
			if k != key {
				used += len(v)
			}
		}
		if used > s.maxBytes {
			return fmt.Errorf("save %q (%d bytes): %w", key, len(data), domain.ErrQuotaExceeded)
		}
	}
	s.data[key] = copied
	return nil
}

// Load returns a copy of the value.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}

	// Copy on read so callers can't mutate store state
	return append([]byte(nil), data...), nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
