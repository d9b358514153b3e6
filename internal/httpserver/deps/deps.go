package deps

import (
	"time"

	"bookmarkd/internal/auth"
	"bookmarkd/internal/bookmarks"
	"bookmarkd/internal/logger"
	"bookmarkd/internal/realtime"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Verifier  auth.Verifier      // bearer token verification
	Bookmarks *bookmarks.Service // bookmark CRUD
	Broker    *realtime.Broker   // per-user event feeds (nil => events route disabled)

	AllowedOrigins []string // CORS allowed origins; empty = allow all
	TrustProxy     bool     // true if running behind a trusted reverse proxy
	RateBurst      int      // rate limit bucket size per user
	RatePerMin     int      // rate limit refill per user per minute
}
