package domain

import (
	"encoding/json"
	"fmt"
)

// EventName is the wire-level event name carried on every sync message.
const EventName = "bookmark-change"

// EventType tags a SyncEvent variant.
type EventType string

const (
	EventAdded   EventType = "added"
	EventDeleted EventType = "deleted"
)

// SyncEvent is a transient notification of a bookmark mutation, fanned out
// to the owner's other live sessions. It is never persisted and carries no
// delivery guarantee; the list endpoint remains the source of truth.
//
// Exactly one of Bookmark / BookmarkID is set, depending on Type.
type SyncEvent struct {
	Event string    `json:"event"`
	Type  EventType `json:"type"`

	// UserID is the originating user. Sessions only ever receive events
	// for their own user because the channel name is user-scoped.
	UserID string `json:"userId"`

	Bookmark   *Bookmark `json:"bookmark,omitempty"`
	BookmarkID string    `json:"bookmarkId,omitempty"`
}

// AddedEvent wraps a freshly created bookmark.
func AddedEvent(b Bookmark) SyncEvent {
	return SyncEvent{
		Event:    EventName,
		Type:     EventAdded,
		UserID:   b.UserID,
		Bookmark: &b,
	}
}

// DeletedEvent wraps a deletion.
func DeletedEvent(userID, bookmarkID string) SyncEvent {
	return SyncEvent{
		Event:      EventName,
		Type:       EventDeleted,
		UserID:     userID,
		BookmarkID: bookmarkID,
	}
}

// Validate checks that the event is a recognized, well-formed variant.
// Unknown tags are an error, not a silent skip.
func (e SyncEvent) Validate() error {
	switch e.Type {
	case EventAdded:
		if e.Bookmark == nil {
			return fmt.Errorf("added event without bookmark")
		}
		if e.Bookmark.ID == "" {
			return fmt.Errorf("added event with empty bookmark id")
		}
	case EventDeleted:
		if e.BookmarkID == "" {
			return fmt.Errorf("deleted event with empty bookmark id")
		}
	default:
		return fmt.Errorf("unrecognized event type %q", e.Type)
	}
	if e.UserID == "" {
		return fmt.Errorf("event without user id")
	}
	return nil
}

// DecodeSyncEvent parses and validates a wire payload.
func DecodeSyncEvent(data []byte) (SyncEvent, error) {
	var ev SyncEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return SyncEvent{}, fmt.Errorf("failed to parse sync event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return SyncEvent{}, err
	}
	return ev, nil
}
