package memkv

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bookmarkd/internal/store"
)

func TestSetGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	type record struct {
		Name string `json:"name"`
	}

	if err := s.Set(ctx, "k1", record{Name: "one"}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	var got record
	if err := s.Get(ctx, "k1", &got); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "one" {
		t.Errorf("Get() = %+v, want name one", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := New()
	var dest map[string]any
	err := s.Get(context.Background(), "absent", &dest)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(absent) = %v, want ErrNotFound", err)
	}
}

func TestDelIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Set(ctx, "k1", "v"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Del(ctx, "k1"); err != nil {
		t.Fatalf("Del() error: %v", err)
	}
	if err := s.Del(ctx, "k1"); err != nil {
		t.Errorf("second Del() error: %v, want nil", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestGetByPrefix(t *testing.T) {
	s := New()
	ctx := context.Background()

	keys := []string{"bookmarks:a:1", "bookmarks:a:2", "bookmarks:b:1", "other:a:1"}
	for _, k := range keys {
		if err := s.Set(ctx, k, k); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}

	entries, err := s.GetByPrefix(ctx, "bookmarks:a:")
	if err != nil {
		t.Fatalf("GetByPrefix() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("GetByPrefix() returned %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Key != "bookmarks:a:1" && e.Key != "bookmarks:a:2" {
			t.Errorf("unexpected key %s in prefix scan", e.Key)
		}
	}

	empty, err := s.GetByPrefix(ctx, "bookmarks:c:")
	if err != nil {
		t.Fatalf("GetByPrefix(empty) error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("GetByPrefix(empty) returned %d entries, want 0", len(empty))
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "k" + string(rune('a'+n))
			_ = s.Set(ctx, key, n)
			_, _ = s.GetByPrefix(ctx, "k")
			_ = s.Del(ctx, key)
		}(i)
	}
	wg.Wait()
}
