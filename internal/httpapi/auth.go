package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/shelflab/platform/internal/domain/sessions"
	"github.com/shelflab/platform/internal/domain/users"
)

func registerAuthRoutes(mux *http.ServeMux, logger *slog.Logger, userService users.Service, sessionService sessions.Service) {
	mux.HandleFunc("/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		user, err := userService.Register(users.RegisterInput{
			Email:    payload.Email,
			Name:     payload.Name,
			Password: payload.Password,
		})
		if err != nil {
			if errors.Is(err, users.ErrEmailExists) {
				respondError(w, http.StatusConflict, "email already in use")
				return
			}
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		session, err := sessionService.Issue(user.ID)
		if err != nil {
			logger.Error("issue session failed", "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondJSON(w, http.StatusCreated, map[string]any{
			"user": user,
			"token": map[string]any{
				"access_token": session.Token,
				"token_type":   "Bearer",
				"expires_at":   session.ExpiresAt,
			},
		})
	})

	mux.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		user, err := userService.Authenticate(payload.Email, payload.Password)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) || errors.Is(err, users.ErrInvalidPassword) {
				respondError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		session, err := sessionService.Issue(user.ID)
		if err != nil {
			logger.Error("issue session failed", "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"message": "login successful",
			"user":    user,
			"token": map[string]any{
				"access_token": session.Token,
				"token_type":   "Bearer",
				"expires_at":   session.ExpiresAt,
			},
		})
	})

	mux.HandleFunc("/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		sessionService.Revoke(token)
		respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	})
}
