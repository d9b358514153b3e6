package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark is a saved URL owned by exactly one user.
//
// A bookmark is immutable once created; the only mutation is deletion.
// The storage key of a bookmark is always derivable from UserID and ID,
// and the two must never disagree with the key it is stored under.
type Bookmark struct {
	// ID is the server-assigned unique identifier.
	ID string `json:"id"`

	// UserID is the owner. Always the verified caller's identity,
	// never a client-supplied value.
	UserID string `json:"userId"`

	// URL is the bookmarked address. Expected to be a URL but not
	// strictly parsed.
	URL string `json:"url"`

	// Title is a non-empty human label.
	Title string `json:"title"`

	// CreatedAt is the server-side creation timestamp (UTC).
	CreatedAt time.Time `json:"createdAt"`
}

// NewBookmark builds a bookmark with a generated id and creation time.
func NewBookmark(userID, url, title string) Bookmark {
	return Bookmark{
		ID:        uuid.NewString(),
		UserID:    userID,
		URL:       url,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}
