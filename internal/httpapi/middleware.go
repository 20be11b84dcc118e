package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shelflab/platform/internal/domain/sessions"
)

// bearerToken extracts the token from an Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAuth validates the request's session token and returns the owning
// user id. On failure it writes a 401 and reports ok=false.
func requireAuth(w http.ResponseWriter, r *http.Request, sessionService sessions.Service) (string, bool) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return "", false
	}

	session, err := sessionService.Validate(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid or expired session")
		return "", false
	}
	return session.UserID, true
}

// pagination parses offset/limit query parameters with the given default
// limit. It writes a 400 and reports ok=false on malformed values.
func pagination(w http.ResponseWriter, r *http.Request, defaultLimit int) (offset, limit int, ok bool) {
	query := r.URL.Query()
	offset, limit = 0, defaultLimit
	if v := query.Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid offset parameter")
			return 0, 0, false
		}
		offset = parsed
	}
	if v := query.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit parameter")
			return 0, 0, false
		}
		limit = parsed
	}
	return offset, limit, true
}
