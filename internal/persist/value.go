// Package persist gives in-memory values durable storage in a ports.KVStore.
//
// A Value reads its key once when created and writes through on every Set.
// Storage failures never reach the caller: they are logged and the in-memory
// value stays authoritative for the rest of the session.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"tradeSimulator/internal/ports"
)

// Value is a JSON-encoded value stored under a single key.
type Value[T any] struct {
	mu     sync.RWMutex
	key    string
	store  ports.KVStore
	logger ports.Logger
	value  T
	def    T
}

// New loads key from store. A missing or undecodable value yields def.
//
// Decoding happens on top of def, so struct fields absent from an older
// stored document keep their default.
func New[T any](ctx context.Context, store ports.KVStore, logger ports.Logger, key string, def T) *Value[T] {
	v := &Value[T]{key: key, store: store, logger: logger, value: def, def: def}

	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			logger.Debug(ctx, "No persisted value, using default", map[string]interface{}{"key": key})
		} else {
			logger.Warn(ctx, "Failed to read persisted value, using default", map[string]interface{}{
				"key":   key,
				"error": fmt.Errorf("%w: %v", ports.ErrPersistenceRead, err),
			})
		}
		return v
	}

	decoded := def
	if err := json.Unmarshal(raw, &decoded); err != nil {
		logger.Warn(ctx, "Persisted value is corrupted, using default", map[string]interface{}{
			"key":   key,
			"error": fmt.Errorf("%w: %v", ports.ErrPersistenceRead, err),
		})
		return v
	}
	v.value = decoded
	return v
}

// Key returns the storage key.
func (v *Value[T]) Key() string {
	return v.key
}

// Get returns the current in-memory value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set replaces the in-memory value and persists it. Inside a Batch the write
// is deferred until the batch commits.
func (v *Value[T]) Set(ctx context.Context, val T) {
	v.mu.Lock()
	v.value = val
	v.mu.Unlock()

	data, err := json.Marshal(val)
	if err != nil {
		v.logger.Error(ctx, fmt.Errorf("%w: %v", ports.ErrPersistenceWrite, err), "Failed to encode value", map[string]interface{}{"key": v.key})
		return
	}

	if b := batchFrom(ctx); b != nil && b.store == v.store {
		b.put(v.key, data)
		return
	}

	if err := v.store.Set(ctx, v.key, data); err != nil {
		v.logger.Error(ctx, fmt.Errorf("%w: %v", ports.ErrPersistenceWrite, err), "Failed to persist value, continuing in memory", map[string]interface{}{"key": v.key})
	}
}

// Reset restores the default value and removes the key from the store, so a
// later load also yields the default. Inside a Batch the default is written
// instead, keeping the batch a single SetMany.
func (v *Value[T]) Reset(ctx context.Context) {
	if b := batchFrom(ctx); b != nil && b.store == v.store {
		v.Set(ctx, v.def)
		return
	}

	v.mu.Lock()
	v.value = v.def
	v.mu.Unlock()

	if err := v.store.Delete(ctx, v.key); err != nil {
		v.logger.Error(ctx, fmt.Errorf("%w: %v", ports.ErrPersistenceWrite, err), "Failed to delete persisted value, continuing in memory", map[string]interface{}{"key": v.key})
	}
}
