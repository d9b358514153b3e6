// Package rediskv implements the store.KV port on Redis.
package rediskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bookmarkd/internal/store"
)

// Store is a Redis-backed key-value adapter. Values are stored as JSON
// strings; prefix reads use SCAN so they never block the server.
type Store struct {
	client *redis.Client
}

// New creates a Redis store over an established client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string, dest any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *Store) Del(ctx context.Context, key string) error {
	// DEL of a missing key is a no-op in Redis, which matches the port.
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetByPrefix(ctx context.Context, prefix string) ([]store.Entry, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan prefix %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return []store.Entry{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %d keys under %s: %w", len(keys), prefix, err)
	}

	entries := make([]store.Entry, 0, len(keys))
	for i, v := range values {
		// A key deleted between SCAN and MGET comes back nil; skip it.
		raw, ok := v.(string)
		if !ok {
			continue
		}
		entries = append(entries, store.Entry{Key: keys[i], Value: []byte(raw)})
	}
	return entries, nil
}
