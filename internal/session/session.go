package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/logger"
)

// Session is one authenticated client connection: credential, live event
// subscription, and local state. Create it with Open, tear it down with
// SignOut.
type Session struct {
	client *Client
	state  *State
	logger logger.Logger

	userID string

	mu       sync.Mutex
	conn     *websocket.Conn
	cancel   context.CancelFunc
	done     chan struct{}
	signedIn bool
}

// Open signs a session in: fetches the full bookmark list and subscribes
// to the user's event feed over a websocket.
func Open(ctx context.Context, baseURL, token, userID string, log logger.Logger) (*Session, error) {
	s := &Session{
		client: NewClient(baseURL, token),
		state:  NewState(),
		logger: log,
		userID: userID,
	}

	list, err := s.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial fetch failed: %w", err)
	}
	s.state.ReplaceAll(list)

	conn, err := dialEvents(ctx, baseURL, token)
	if err != nil {
		return nil, fmt.Errorf("failed to open event feed: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.conn = conn
	s.cancel = cancel
	s.done = make(chan struct{})
	s.signedIn = true

	go s.readLoop(loopCtx)
	return s, nil
}

func dialEvents(ctx context.Context, baseURL, token string) (*websocket.Conn, error) {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) +
		"/bookmarks/events?access_token=" + url.QueryEscape(token)
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, nil
}

// State exposes the session's bookmark list.
func (s *Session) State() *State {
	return s.state
}

// Refresh replaces local state with a fresh server fetch.
func (s *Session) Refresh(ctx context.Context) error {
	list, err := s.client.List(ctx)
	if err != nil {
		return err
	}
	if !s.active() {
		// Response arrived after sign-out; nothing to apply.
		return nil
	}
	s.state.ReplaceAll(list)
	return nil
}

// Create stores a bookmark and applies it locally before returning, so the
// broadcast echo arriving later is dropped by the dedup rule.
func (s *Session) Create(ctx context.Context, bookmarkURL, title string) (domain.Bookmark, error) {
	b, err := s.client.Create(ctx, bookmarkURL, title)
	if err != nil {
		return domain.Bookmark{}, err
	}
	if s.active() {
		s.state.Prepend(b)
	}
	return b, nil
}

// Delete removes a bookmark and applies the removal locally.
func (s *Session) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, id); err != nil {
		return err
	}
	if s.active() {
		s.state.Remove(id)
	}
	return nil
}

// SignOut releases the subscription and clears local state. In-flight
// requests are not cancelled; their responses land on cleared state and
// are inapplicable.
func (s *Session) SignOut() {
	s.mu.Lock()
	if !s.signedIn {
		s.mu.Unlock()
		return
	}
	s.signedIn = false
	conn := s.conn
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	_ = conn.Close()
	<-done
	s.state.Clear()
	s.logger.Debug("session signed out", logger.String("user_id", s.userID))
}

func (s *Session) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signedIn
}

func (s *Session) readLoop(ctx context.Context) {
	defer close(s.done)
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("event feed closed", logger.Error(err))
			}
			return
		}
		ev, err := domain.DecodeSyncEvent(payload)
		if err != nil {
			s.logger.Warn("rejecting malformed sync event", logger.Error(err))
			continue
		}
		s.Apply(ev)
	}
}

// Apply folds one inbound sync event into local state. Exhaustive over the
// event variants; Decode already rejected unknown tags.
func (s *Session) Apply(ev domain.SyncEvent) {
	switch ev.Type {
	case domain.EventAdded:
		s.state.ApplyAdded(*ev.Bookmark)
	case domain.EventDeleted:
		s.state.ApplyDeleted(ev.BookmarkID)
	}
}
