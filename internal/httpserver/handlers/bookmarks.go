package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookmarkd/internal/auth"
	"bookmarkd/internal/bookmarks"
	"bookmarkd/internal/domain"
	"bookmarkd/internal/httpserver/deps"
	"bookmarkd/internal/logger"
)

type listResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

type createRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type createResponse struct {
	Bookmark domain.Bookmark `json:"bookmark"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

// ListBookmarks returns all of the caller's bookmarks.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		list, err := d.Bookmarks.List(r.Context(), id.UserID)
		if err != nil {
			d.Logger.Error("failed to list bookmarks",
				logger.String("user_id", id.UserID),
				logger.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondJSON(w, http.StatusOK, listResponse{Bookmarks: list})
	}
}

// CreateBookmark stores a new bookmark for the caller and returns the full
// record so the client never has to guess server-assigned fields.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json body")
			return
		}

		b, err := d.Bookmarks.Create(r.Context(), id.UserID, req.URL, req.Title)
		switch {
		case errors.Is(err, bookmarks.ErrValidation):
			respondError(w, http.StatusBadRequest, "url and title are required")
			return
		case err != nil:
			d.Logger.Error("failed to create bookmark",
				logger.String("user_id", id.UserID),
				logger.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondJSON(w, http.StatusCreated, createResponse{Bookmark: b})
	}
}

// DeleteBookmark removes the caller's bookmark by id. Deleting an absent id
// still succeeds; the operation is idempotent.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		bookmarkID := chi.URLParam(r, "id")
		if err := d.Bookmarks.Delete(r.Context(), id.UserID, bookmarkID); err != nil {
			d.Logger.Error("failed to delete bookmark",
				logger.String("user_id", id.UserID),
				logger.String("bookmark_id", bookmarkID),
				logger.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondJSON(w, http.StatusOK, deleteResponse{Success: true})
	}
}
