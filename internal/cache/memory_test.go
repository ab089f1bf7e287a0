package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("setting key: %v", err)
	}

	value, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("getting key: %v", err)
	}
	if string(value) != "value" {
		t.Errorf("expected 'value', got %q", value)
	}
}

func TestMemoryCache_MissAndExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "short", []byte("x"), -time.Second); err != nil {
		t.Fatalf("setting key: %v", err)
	}
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss for expired entry, got %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("setting key: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("deleting key: %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("abc"), time.Minute); err != nil {
		t.Fatalf("setting key: %v", err)
	}

	first, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("getting key: %v", err)
	}
	first[0] = 'z'

	second, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("getting key again: %v", err)
	}
	if string(second) != "abc" {
		t.Errorf("expected stored value untouched, got %q", second)
	}
}
