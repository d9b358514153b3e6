package mw

import (
	"encoding/json"
	"net/http"
	"strings"

	"bookmarkd/internal/auth"
	"bookmarkd/internal/logger"
)

// BearerToken extracts the credential from the Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Auth verifies the bearer credential on every request and injects the
// resulting identity into the context. Missing or invalid credentials stop
// the request with 401 before any handler (and therefore any storage
// access) runs.
func Auth(verifier auth.Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return authenticate(verifier, log, false)
}

// AuthAllowQueryToken is Auth plus an access_token query parameter
// fallback. Only the websocket route mounts this: browsers cannot set
// headers on a websocket dial. Keeping the fallback off the REST routes
// keeps credentials out of logged request paths.
func AuthAllowQueryToken(verifier auth.Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return authenticate(verifier, log, true)
}

func authenticate(verifier auth.Verifier, log logger.Logger, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" && allowQuery {
				token = r.URL.Query().Get("access_token")
			}
			if token == "" {
				unauthorized(w)
				return
			}

			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Debug("credential rejected",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
