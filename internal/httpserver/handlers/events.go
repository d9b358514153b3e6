package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"bookmarkd/internal/auth"
	"bookmarkd/internal/httpserver/deps"
	"bookmarkd/internal/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// Events upgrades the request to a websocket and streams the caller's sync
// events until either side closes. One subscription per connection; the
// subscription is released when the socket goes away.
func Events(d deps.Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Cross-origin policy is handled by the CORS middleware on the
		// REST routes; the websocket carries only the caller's own events.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if d.Broker == nil {
			respondError(w, http.StatusNotFound, "event stream disabled")
			return
		}

		sub, err := d.Broker.Subscribe(r.Context(), id.UserID)
		if err != nil {
			d.Logger.Error("failed to subscribe to event feed",
				logger.String("user_id", id.UserID),
				logger.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			_ = sub.Close()
			return
		}

		d.Logger.Debug("event stream opened", logger.String("user_id", id.UserID))
		defer func() {
			_ = sub.Close()
			_ = conn.Close()
			d.Logger.Debug("event stream closed", logger.String("user_id", id.UserID))
		}()

		// Drain reads so close frames and pongs are processed; the client
		// never sends application messages.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(wsPingInterval)
		defer ping.Stop()

		for {
			select {
			case <-done:
				return
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case ev, ok := <-sub.Events():
				if !ok {
					_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(ev); err != nil {
					d.Logger.Debug("failed to push sync event",
						logger.String("user_id", id.UserID),
						logger.Error(err))
					return
				}
			}
		}
	}
}
