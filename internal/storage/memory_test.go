package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryPutGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}

	if err := m.Put(ctx, "a", []byte("one"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := m.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "one" {
		t.Errorf("Get = %q, want %q", got, "one")
	}

	if err := m.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete: err = %v, want ErrNotFound", err)
	}
	// Deleting a missing key is fine
	if err := m.Delete(ctx, "a"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Put(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := m.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired key: err = %v, want ErrNotFound", err)
	}

	keys, err := m.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expired key still listed: %v", keys)
	}
}

func TestMemoryKeysPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, k := range []string{"user:2", "user:1", "email:a@x", "user:3"} {
		if err := m.Put(ctx, k, []byte("v"), 0); err != nil {
			t.Fatalf("Put(%q): %v", k, err)
		}
	}

	keys, err := m.Keys(ctx, "user:")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"user:1", "user:2", "user:3"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestMemoryGetCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Put(ctx, "k", []byte("abc"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := m.Get(ctx, "k")
	got[0] = 'X'

	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}
