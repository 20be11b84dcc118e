package httpapi

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/shelflab/platform/internal/domain/responses"
	"github.com/shelflab/platform/internal/domain/results"
)

// handleResults serves the analysis readout under /v1/surveys/{id}/results.
// The optional kind parameter restricts the tally to human or synthetic
// responses.
func handleResults(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service results.Service, surveyID, ownerID string) {
	var kind responses.Kind
	switch v := strings.TrimSpace(r.URL.Query().Get("kind")); v {
	case "":
	case string(responses.KindHuman):
		kind = responses.KindHuman
	case string(responses.KindSynthetic):
		kind = responses.KindSynthetic
	default:
		respondError(w, http.StatusBadRequest, "kind must be human or synthetic")
		return
	}

	summary, err := service.ForSurvey(surveyID, ownerID, kind)
	if err != nil {
		writeSurveyError(w, logger, "compute results", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
