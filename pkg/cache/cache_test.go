package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestGet_LoadsOnceWhileFresh(t *testing.T) {
	c := New(Options{TTL: time.Minute})
	var loads int32

	loader := func(ctx context.Context, key string) (interface{}, error) {
		atomic.AddInt32(&loads, 1)
		return "topics", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Get(context.Background(), "trending", loader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "topics" {
			t.Fatalf("got %v", v)
		}
	}

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("expected 1 load, got %d", n)
	}
}

func TestGet_LoaderErrorNotCached(t *testing.T) {
	c := New(Options{TTL: time.Minute})
	wantErr := errors.New("db down")
	calls := 0

	loader := func(ctx context.Context, key string) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, wantErr
		}
		return 42, nil
	}

	if _, err := c.Get(context.Background(), "k", loader); !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := c.Get(context.Background(), "k", loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("got %v", v)
	}
}

func TestSet_EvictsOldestBeyondMaxEntries(t *testing.T) {
	c := New(Options{TTL: time.Minute, MaxEntries: 2})
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	loads := 0
	loader := func(ctx context.Context, key string) (interface{}, error) {
		loads++
		return "reloaded", nil
	}

	if v, _ := c.Get(context.Background(), "a", loader); v != "reloaded" {
		t.Fatalf("expected oldest entry evicted, got %v", v)
	}
	if v, _ := c.Get(context.Background(), "c", loader); v != 3 {
		t.Fatalf("expected newest entry kept, got %v", v)
	}
}

func TestInvalidate(t *testing.T) {
	c := New(Options{TTL: time.Minute})
	c.Set("k", "v")
	c.Invalidate("k")

	loads := 0
	loader := func(ctx context.Context, key string) (interface{}, error) {
		loads++
		return "fresh", nil
	}
	if v, _ := c.Get(context.Background(), "k", loader); v != "fresh" {
		t.Fatalf("got %v", v)
	}
	if loads != 1 {
		t.Fatalf("expected reload after invalidate")
	}
}
