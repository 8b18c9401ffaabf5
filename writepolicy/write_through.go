package writepolicy

import (
	"context"

	"go.uber.org/zap"

	"github.com/krisalay/msea-cache/storage"
)

/*
This file implements the "write-through" policy.

Whenever the cache writes a record, it immediately writes the same bytes to the persistent store.

So the flow is: memory write → store write (synchronous)
*/
type WriteThroughPolicy struct {

	// store is the persistent tier.
	store storage.Store

	logger *zap.Logger
}

// NewWriteThroughPolicy creates a new write-through policy.
func NewWriteThroughPolicy(store storage.Store, logger *zap.Logger) *WriteThroughPolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WriteThroughPolicy{store: store, logger: logger}
}

/*
OnWrite persists the value before returning.
A failed write (quota, unavailable store) is logged and dropped; the
memory tier still holds the record.
*/
func (w *WriteThroughPolicy) OnWrite(ctx context.Context, key string, value []byte) {
	if err := w.store.Set(ctx, key, value); err != nil {
		w.logger.Warn("persist cache entry", zap.String("key", key), zap.Error(err))
	}
}

// OnDelete removes the key before returning.
func (w *WriteThroughPolicy) OnDelete(ctx context.Context, key string) {
	if err := w.store.Delete(ctx, key); err != nil {
		w.logger.Warn("delete persisted cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Sync does nothing: every write has already reached the store.
func (w *WriteThroughPolicy) Sync() {}

// Close does nothing: write-through has no background work.
func (w *WriteThroughPolicy) Close() {}
