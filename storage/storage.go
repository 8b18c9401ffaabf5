// Package storage defines the persistent tier contract.
//
// Implementations are plain key-value stores. They return ordinary errors;
// the two-tier cache above them decides that persistence failures are logged
// and swallowed.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the key is not present in the store.
var ErrNotFound = errors.New("record not found")

// Store is a durable key-value store keyed by namespaced strings.
type Store interface {
	// Get returns the stored bytes or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every key that starts with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Pruner is implemented by stores that can drop entries by age.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, olderThan time.Duration) (int64, error)
}
