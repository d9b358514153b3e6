package routes

import (
	"github.com/go-chi/chi/v5"

	"bookmarkd/internal/httpserver/deps"
	"bookmarkd/internal/httpserver/handlers"
	"bookmarkd/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/bookmarks", func(r chi.Router) {
		// The limiter sits behind auth so it keys on the verified user
		// and a user's tabs share one budget.
		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(d.Verifier, d.Logger))
			r.Use(mw.RateLimit(mw.RateLimitConfig{
				Burst:      d.RateBurst,
				PerMin:     d.RatePerMin,
				TrustProxy: d.TrustProxy,
			}))
			r.Get("/", handlers.ListBookmarks(d))
			r.Post("/", handlers.CreateBookmark(d))
			r.Delete("/{id}", handlers.DeleteBookmark(d))
		})

		// Websocket dials cannot carry headers from a browser, so this
		// route alone accepts the access_token query parameter. One
		// long-lived connection per session needs no request budget.
		r.With(mw.AuthAllowQueryToken(d.Verifier, d.Logger)).
			Get("/events", handlers.Events(d))
	})
}
