// Package session implements the client side of the bookmark sync flow:
// a per-session state store, an HTTP API client, and a websocket
// subscription that feeds inbound sync events into the state.
package session

import (
	"sync"

	"bookmarkd/internal/domain"
)

// State is one session's view of the bookmark list, newest first. It is
// authoritative for the session only; the server's list endpoint is the
// source of truth.
type State struct {
	mu   sync.RWMutex
	list []domain.Bookmark
}

func NewState() *State {
	return &State{}
}

// ReplaceAll swaps in a full server-fetched collection, newest first.
func (s *State) ReplaceAll(bookmarks []domain.Bookmark) {
	sorted := append([]domain.Bookmark(nil), bookmarks...)
	// Stable insertion sort by CreatedAt descending; lists are small.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].CreatedAt.After(sorted[j-1].CreatedAt); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = sorted
}

// Prepend puts a locally created bookmark at the head of the list.
func (s *State) Prepend(b domain.Bookmark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prependLocked(b)
}

// Remove drops the bookmark with the given id. Absent ids are a no-op.
func (s *State) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// ApplyAdded handles an inbound Added event: prepend unless the id is
// already present. The dedup guard is what makes the publisher's own echo
// and races with a concurrent fetch harmless.
func (s *State) ApplyAdded(b domain.Bookmark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.list {
		if existing.ID == b.ID {
			return
		}
	}
	s.prependLocked(b)
}

// ApplyDeleted handles an inbound Deleted event.
func (s *State) ApplyDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// Snapshot returns a copy of the current list, newest first.
func (s *State) Snapshot() []domain.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Bookmark(nil), s.list...)
}

// Len reports the number of bookmarks in the session's view.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}

// Clear empties the state on sign-out.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = nil
}

func (s *State) prependLocked(b domain.Bookmark) {
	s.list = append([]domain.Bookmark{b}, s.list...)
}

func (s *State) removeLocked(id string) {
	for i, b := range s.list {
		if b.ID == id {
			s.list = append(s.list[:i], s.list[i+1:]...)
			return
		}
	}
}
