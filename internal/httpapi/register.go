package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/shelflab/platform/internal/domain"
	"github.com/shelflab/platform/internal/upload"
)

// Register attaches API routes to the provided mux.
func Register(mux *http.ServeMux, logger *slog.Logger, domainServices domain.Container, uploads *upload.Store) {
	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"server":  "shelflab-platform",
			"version": "v1",
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to write ping response", "err", err)
		}
	})

	registerAuthRoutes(mux, logger, domainServices.Users, domainServices.Sessions)
	registerSurveyRoutes(mux, logger, domainServices)
	registerPublicRoutes(mux, logger, domainServices.Responses)

	if uploads != nil {
		registerUploadRoutes(mux, logger, domainServices.Sessions, uploads)
		mux.Handle("/media/", uploads.Handler())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// If encoding fails there's not much we can do; log to stderr.
		slog.Default().Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
