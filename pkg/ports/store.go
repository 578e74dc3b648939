package ports

import (
	"context"
)

// KVStore defines a durable key-value slot.
// Values are opaque bytes (JSON-encoded snapshots); the store is treated as a
// single-slot register per key: last write wins, no optimistic concurrency.
type KVStore interface {
	// Save persists data under key, overwriting any previous value.
	// Returns domain.ErrQuotaExceeded if the value does not fit.
	Save(ctx context.Context, key string, data []byte) error

	// Load retrieves the value for key.
	// Returns domain.ErrKeyNotFound if the key does not exist.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys held by the store.
	List(ctx context.Context) ([]string, error)
}
