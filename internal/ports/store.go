package ports

import "context"

// KVStore is the durable key-value capability the simulator's stores are built on.
// Values are opaque encoded documents; each key is owned by exactly one store.
type KVStore interface {
	// Get returns the raw value stored under key.
	// Returns an error wrapping ErrNotFound if nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set durably stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// SetMany stores all entries in a single transaction: either every entry
	// is persisted or none is.
	SetMany(ctx context.Context, entries map[string][]byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the store. It must not be used afterwards.
	Close() error
}
