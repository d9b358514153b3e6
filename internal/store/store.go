// Package store defines the key-value port the bookmark service persists
// through. Keys are opaque strings; values are JSON-serializable. The only
// guarantee callers may rely on is per-key atomicity.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// Entry is one key/value pair returned by a prefix scan.
type Entry struct {
	Key   string
	Value []byte
}

// KV is a prefix-scannable key-value store.
type KV interface {
	// Set upserts a JSON-encoded value under an exact key.
	Set(ctx context.Context, key string, value any) error

	// Get decodes the value at key into dest. Returns ErrNotFound when
	// the key is absent.
	Get(ctx context.Context, key string, dest any) error

	// Del removes a key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// GetByPrefix returns every entry whose key starts with prefix.
	// Order is unspecified.
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)
}
