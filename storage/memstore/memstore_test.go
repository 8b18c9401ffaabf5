package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/krisalay/msea-cache/storage"
)

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	value := []byte("v")
	if err := s.Set(ctx, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v; stored value must not alias the caller's slice", got, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("deleting a missing key must not fail: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestKeysByPrefix(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []string{"msea:guild:g1", "msea:character:b", "msea:character:a"} {
		_ = s.Set(ctx, k, []byte("{}"))
	}

	keys, err := s.Keys(ctx, "msea:character:")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "msea:character:a" || keys[1] != "msea:character:b" {
		t.Fatalf("Keys = %v", keys)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := New().Set(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
