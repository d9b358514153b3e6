// Package bookmarks implements the bookmark CRUD service: user-scoped
// persistence over the key-value port plus best-effort sync event fan-out.
package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/logger"
	"bookmarkd/internal/store"
)

// ErrValidation marks a rejected create request (missing url or title).
var ErrValidation = errors.New("url and title are required")

// Publisher fans a sync event out to the owner's other live sessions.
// Delivery is best effort; a publish failure never fails the mutation.
type Publisher interface {
	Publish(ctx context.Context, ev domain.SyncEvent) error
}

// Service handles bookmark list/create/delete for verified users.
type Service struct {
	kv     store.KV
	pub    Publisher
	logger logger.Logger
}

// NewService builds a bookmark service. pub may be nil when fan-out is
// disabled (e.g. memory storage mode without a broker).
func NewService(kv store.KV, pub Publisher, log logger.Logger) *Service {
	return &Service{kv: kv, pub: pub, logger: log}
}

// List returns all of userID's bookmarks, order unspecified.
// Records that fail to decode are skipped and logged, never surfaced.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	entries, err := s.kv.GetByPrefix(ctx, UserPrefix(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	list := make([]domain.Bookmark, 0, len(entries))
	for _, e := range entries {
		var b domain.Bookmark
		if err := json.Unmarshal(e.Value, &b); err != nil {
			s.logger.Warn("skipping malformed bookmark record",
				logger.String("key", e.Key),
				logger.Error(err))
			continue
		}
		list = append(list, b)
	}
	return list, nil
}

// Create validates, persists, and announces a new bookmark. The returned
// record carries the server-assigned id and timestamp; the owner is always
// the verified caller regardless of anything the client sent.
func (s *Service) Create(ctx context.Context, userID, url, title string) (domain.Bookmark, error) {
	if url == "" || title == "" {
		return domain.Bookmark{}, ErrValidation
	}

	b := domain.NewBookmark(userID, url, title)
	if err := s.kv.Set(ctx, Key(b.UserID, b.ID), b); err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to store bookmark: %w", err)
	}

	s.logger.Info("bookmark created",
		logger.String("user_id", userID),
		logger.String("bookmark_id", b.ID))

	s.announce(ctx, domain.AddedEvent(b))
	return b, nil
}

// Delete removes userID's bookmark with the given id. Deleting an absent or
// already-deleted id is not an error. The key is built from the verified
// caller's id, so cross-user deletion is structurally impossible; on top of
// that the stored record's owner is asserted before deleting.
func (s *Service) Delete(ctx context.Context, userID, bookmarkID string) error {
	key := Key(userID, bookmarkID)

	var existing domain.Bookmark
	err := s.kv.Get(ctx, key, &existing)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to read bookmark before delete: %w", err)
	}

	if existing.UserID != userID {
		// Key invariant violated: the record under this user's key claims
		// a different owner. Refuse and leave it for the sweeper.
		return fmt.Errorf("bookmark %s owner mismatch: stored %q, caller %q",
			bookmarkID, existing.UserID, userID)
	}

	if err := s.kv.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	s.logger.Info("bookmark deleted",
		logger.String("user_id", userID),
		logger.String("bookmark_id", bookmarkID))

	s.announce(ctx, domain.DeletedEvent(userID, bookmarkID))
	return nil
}

func (s *Service) announce(ctx context.Context, ev domain.SyncEvent) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish sync event",
			logger.String("type", string(ev.Type)),
			logger.String("user_id", ev.UserID),
			logger.Error(err))
	}
}
