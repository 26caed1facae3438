package persist

import (
	"context"
	"fmt"
	"sync"

	"tradeSimulator/internal/ports"
)

type batchKey struct{}

type batch struct {
	store   ports.KVStore
	mu      sync.Mutex
	entries map[string][]byte
}

func (b *batch) put(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = data
}

func batchFrom(ctx context.Context) *batch {
	b, _ := ctx.Value(batchKey{}).(*batch)
	return b
}

// Batch runs fn and commits every Value.Set made against store inside fn with
// a single SetMany, so the writes are durable together or not at all.
//
// If fn returns an error nothing is written and the error is returned.
// A commit failure is logged and swallowed like any other write failure.
// Nested batches on the same store join the outer one.
func Batch(ctx context.Context, store ports.KVStore, logger ports.Logger, fn func(ctx context.Context) error) error {
	if outer := batchFrom(ctx); outer != nil && outer.store == store {
		return fn(ctx)
	}

	b := &batch{store: store, entries: make(map[string][]byte)}
	if err := fn(context.WithValue(ctx, batchKey{}, b)); err != nil {
		return err
	}
	if len(b.entries) == 0 {
		return nil
	}

	if err := store.SetMany(ctx, b.entries); err != nil {
		keys := make([]string, 0, len(b.entries))
		for k := range b.entries {
			keys = append(keys, k)
		}
		logger.Error(ctx, fmt.Errorf("%w: %v", ports.ErrPersistenceWrite, err), "Failed to commit batch, continuing in memory", map[string]interface{}{"keys": keys})
	}
	return nil
}
