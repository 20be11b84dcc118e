package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/shelflab/platform/internal/domain/panel"
	"github.com/shelflab/platform/internal/domain/responses"
	"github.com/shelflab/platform/internal/domain/surveys"
)

// handlePanelLaunch starts a synthetic panel for a live survey and blocks
// until the run finishes. Runs are bounded in size and concurrency, so a
// request-scoped run keeps the API simple without risking runaway work.
func handlePanelLaunch(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service panel.Service, surveyID, ownerID string) {
	var payload struct {
		Respondents int `json:"respondents"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
	}
	if payload.Respondents < 0 {
		respondError(w, http.StatusBadRequest, "respondents must not be negative")
		return
	}

	run, err := service.Launch(r.Context(), surveyID, ownerID, panel.LaunchInput{Respondents: payload.Respondents})
	if err != nil {
		// A failed run that was persisted is still useful to the caller.
		if run.ID != "" {
			respondJSON(w, http.StatusBadGateway, run)
			return
		}
		writePanelError(w, logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, run)
}

func handlePanelRunList(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service panel.Service, surveyID, ownerID string) {
	runs, err := service.ListBySurvey(surveyID, ownerID)
	if err != nil {
		writePanelError(w, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  runs,
		"count": len(runs),
	})
}

func writePanelError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, panel.ErrNotImplemented):
		respondError(w, http.StatusNotImplemented, "panel runs not yet implemented")
	case errors.Is(err, panel.ErrNoChooser):
		respondError(w, http.StatusServiceUnavailable, "no panel backend configured")
	case errors.Is(err, surveys.ErrNotFound):
		respondError(w, http.StatusNotFound, "survey not found")
	case errors.Is(err, surveys.ErrForbidden):
		respondError(w, http.StatusForbidden, "survey belongs to another owner")
	case errors.Is(err, responses.ErrSurveyNotLive):
		respondError(w, http.StatusConflict, "survey must be live to run a panel")
	default:
		logger.Error("panel operation failed", "err", err)
		respondError(w, http.StatusBadRequest, err.Error())
	}
}
