package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookmarkd/internal/bookmarks"
	"bookmarkd/internal/domain"
	"bookmarkd/internal/logger"
	"bookmarkd/internal/store"
	"bookmarkd/internal/store/memkv"
)

func TestSweepKeepsValidRecords(t *testing.T) {
	kv := memkv.New()
	ctx := context.Background()

	good := domain.NewBookmark("user-a", "https://x.com", "X")
	if err := kv.Set(ctx, bookmarks.Key(good.UserID, good.ID), good); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	sw := NewSweeper(kv, logger.Nop(), time.Hour)
	if err := sw.Sweep(ctx); err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}

	var kept domain.Bookmark
	if err := kv.Get(ctx, bookmarks.Key(good.UserID, good.ID), &kept); err != nil {
		t.Errorf("valid record was removed: %v", err)
	}
}

func TestSweepRemovesInvariantViolations(t *testing.T) {
	kv := memkv.New()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value any
	}{
		{
			name:  "owner mismatch",
			key:   bookmarks.Key("user-a", "bm-1"),
			value: domain.Bookmark{ID: "bm-1", UserID: "user-b", URL: "https://x.com", Title: "X"},
		},
		{
			name:  "id mismatch",
			key:   bookmarks.Key("user-a", "bm-2"),
			value: domain.Bookmark{ID: "other", UserID: "user-a", URL: "https://x.com", Title: "X"},
		},
		{
			name:  "undecodable record",
			key:   bookmarks.Key("user-a", "bm-3"),
			value: "not a bookmark object",
		},
	}

	for _, tt := range tests {
		if err := kv.Set(ctx, tt.key, tt.value); err != nil {
			t.Fatalf("Set(%s) error: %v", tt.key, err)
		}
	}

	sw := NewSweeper(kv, logger.Nop(), time.Hour)
	if err := sw.Sweep(ctx); err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dest any
			if err := kv.Get(ctx, tt.key, &dest); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("record %s survived the sweep", tt.key)
			}
		})
	}
}

func TestSweepIgnoresOtherNamespaces(t *testing.T) {
	kv := memkv.New()
	ctx := context.Background()

	if err := kv.Set(ctx, "sessions:user-a:tok", "opaque"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	sw := NewSweeper(kv, logger.Nop(), time.Hour)
	if err := sw.Sweep(ctx); err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}

	var dest string
	if err := kv.Get(ctx, "sessions:user-a:tok", &dest); err != nil {
		t.Errorf("sweep touched a key outside the bookmark namespace: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	kv := memkv.New()
	sw := NewSweeper(kv, logger.Nop(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sw.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	sw.Stop()
}
