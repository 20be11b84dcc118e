package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"github.com/shelflab/platform/internal/domain"
	"github.com/shelflab/platform/internal/domain/responses"
	"github.com/shelflab/platform/internal/domain/surveys"
)

// registerPublicRoutes exposes the unauthenticated respondent flow: fetch
// a task assignment, submit choices. No account is involved; respondents
// are identified by an opaque id carried across both calls.
func registerPublicRoutes(mux *http.ServeMux, logger *slog.Logger, service responses.Service) {
	mux.HandleFunc("/public/surveys/", func(w http.ResponseWriter, r *http.Request) {
		remainder := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/public/surveys/"), "/")
		parts := strings.Split(remainder, "/")
		if len(parts) != 2 || parts[0] == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		surveyID := parts[0]

		switch {
		case parts[1] == "tasks" && r.Method == http.MethodGet:
			handleTaskFetch(w, r, logger, service, surveyID)
		case parts[1] == "responses" && r.Method == http.MethodPost:
			handleResponseSubmit(w, r, logger, service, surveyID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func handleTaskFetch(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service responses.Service, surveyID string) {
	respondentID := strings.TrimSpace(r.URL.Query().Get("respondent_id"))
	if respondentID == "" {
		// First visit: mint an id the respondent carries through submission.
		respondentID = uuid.NewString()
	}

	taskSet, err := service.Tasks(surveyID, respondentID)
	if err != nil {
		writeResponseError(w, logger, "fetch tasks", err)
		return
	}
	respondJSON(w, http.StatusOK, taskSet)
}

func handleResponseSubmit(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service responses.Service, surveyID string) {
	var payload struct {
		RespondentID string `json:"respondent_id"`
		Levels       []int  `json:"levels"`
		Choice       int    `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(payload.RespondentID) == "" {
		respondError(w, http.StatusBadRequest, "respondent_id is required")
		return
	}

	response, err := service.Submit(responses.SubmitInput{
		SurveyID:     surveyID,
		RespondentID: strings.TrimSpace(payload.RespondentID),
		Kind:         responses.KindHuman,
		Levels:       payload.Levels,
		Choice:       payload.Choice,
	})
	if err != nil {
		writeResponseError(w, logger, "submit response", err)
		return
	}
	respondJSON(w, http.StatusCreated, response)
}

// handleResponseList serves the researcher-facing response listing under
// /v1/surveys/{id}/responses. Ownership is enforced before touching the
// response store.
func handleResponseList(w http.ResponseWriter, r *http.Request, logger *slog.Logger, services domain.Container, surveyID, ownerID string) {
	if _, err := services.Surveys.GetForOwner(surveyID, ownerID); err != nil {
		writeSurveyError(w, logger, "list responses", err)
		return
	}

	offset, limit, ok := pagination(w, r, 50)
	if !ok {
		return
	}

	list, err := services.Responses.ListBySurvey(surveyID, offset, limit)
	if err != nil {
		writeResponseError(w, logger, "list responses", err)
		return
	}

	total, err := services.Responses.CountBySurvey(surveyID)
	if err != nil {
		writeResponseError(w, logger, "count responses", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  list,
		"count": len(list),
		"total": total,
	})
}

func writeResponseError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, responses.ErrNotImplemented):
		respondError(w, http.StatusNotImplemented, op+" not yet implemented")
	case errors.Is(err, surveys.ErrNotFound):
		respondError(w, http.StatusNotFound, "survey not found")
	case errors.Is(err, responses.ErrSurveyNotLive):
		respondError(w, http.StatusConflict, "survey is not accepting responses")
	case errors.Is(err, responses.ErrBadChoice):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(op+" failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
