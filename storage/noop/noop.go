// Package noop provides a persistent tier that stores nothing.
//
// It is injected when persistence is disabled, so callers never need to
// check whether a persistent tier exists.
package noop

import (
	"context"

	"github.com/krisalay/msea-cache/storage"
)

// Store satisfies storage.Store and keeps nothing.
type Store struct{}

func (Store) Get(context.Context, string) ([]byte, error) { return nil, storage.ErrNotFound }

func (Store) Set(context.Context, string, []byte) error { return nil }

func (Store) Delete(context.Context, string) error { return nil }

func (Store) Keys(context.Context, string) ([]string, error) { return nil, nil }
