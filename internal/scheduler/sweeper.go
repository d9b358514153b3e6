// Package scheduler runs background maintenance loops.
package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"bookmarkd/internal/bookmarks"
	"bookmarkd/internal/domain"
	"bookmarkd/internal/logger"
	"bookmarkd/internal/store"
)

// Sweeper periodically scans the bookmark namespace and deletes records
// that violate the key invariant: the stored userId/id must match the key
// the record sits under. Such records cannot be created through the API;
// they indicate a bug or manual tampering and are unreachable garbage.
type Sweeper struct {
	kv       store.KV
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewSweeper(kv store.KV, log logger.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		kv:       kv,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one sweep immediately, then sweeps on every tick until Stop
// or context cancellation.
func (s *Sweeper) Start(ctx context.Context) error {
	if err := s.Sweep(ctx); err != nil {
		s.logger.Warn("initial sweep failed", logger.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Sweep(ctx); err != nil {
					s.logger.Error("sweep failed", logger.Error(err))
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the periodic sweeps.
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

// Sweep scans every bookmark record once and removes invariant violations.
func (s *Sweeper) Sweep(ctx context.Context) error {
	entries, err := s.kv.GetByPrefix(ctx, bookmarks.KeyPrefix)
	if err != nil {
		return err
	}

	removed := 0
	for _, e := range entries {
		if !s.valid(e) {
			if err := s.kv.Del(ctx, e.Key); err != nil {
				s.logger.Warn("failed to remove invalid record",
					logger.String("key", e.Key),
					logger.Error(err))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("sweep removed invalid bookmark records",
			logger.Int("removed", removed),
			logger.Int("scanned", len(entries)))
	} else {
		s.logger.Debug("sweep found nothing to remove",
			logger.Int("scanned", len(entries)))
	}
	return nil
}

func (s *Sweeper) valid(e store.Entry) bool {
	userID, bookmarkID, err := bookmarks.ParseKey(e.Key)
	if err != nil {
		s.logger.Warn("malformed key in bookmark namespace",
			logger.String("key", e.Key))
		return false
	}

	var b domain.Bookmark
	if err := json.Unmarshal(e.Value, &b); err != nil {
		s.logger.Warn("undecodable bookmark record",
			logger.String("key", e.Key),
			logger.Error(err))
		return false
	}

	if b.UserID != userID || b.ID != bookmarkID {
		s.logger.Warn("bookmark record disagrees with its key",
			logger.String("key", e.Key),
			logger.String("stored_user_id", b.UserID),
			logger.String("stored_id", b.ID))
		return false
	}
	return true
}
