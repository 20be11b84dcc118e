package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/shelflab/platform/internal/conjoint"
	"github.com/shelflab/platform/internal/domain"
	"github.com/shelflab/platform/internal/domain/surveys"
	"github.com/shelflab/platform/internal/upload"
)

func registerSurveyRoutes(mux *http.ServeMux, logger *slog.Logger, services domain.Container) {
	mux.HandleFunc("/v1/surveys", func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := requireAuth(w, r, services.Sessions)
		if !ok {
			return
		}
		switch r.Method {
		case http.MethodGet:
			handleSurveyList(w, r, logger, services.Surveys, ownerID)
		case http.MethodPost:
			handleSurveyCreate(w, r, logger, services.Surveys, ownerID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/v1/surveys/", func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := requireAuth(w, r, services.Sessions)
		if !ok {
			return
		}

		remainder := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/surveys/"), "/")
		parts := strings.Split(remainder, "/")
		if parts[0] == "" {
			respondError(w, http.StatusBadRequest, "missing survey id")
			return
		}
		id := parts[0]

		switch {
		case len(parts) == 1:
			switch r.Method {
			case http.MethodGet:
				handleSurveyGet(w, r, logger, services.Surveys, id, ownerID)
			case http.MethodPut:
				handleSurveyUpdate(w, r, logger, services.Surveys, id, ownerID)
			case http.MethodPatch:
				handleSurveyUpdateStatus(w, r, logger, services.Surveys, id, ownerID)
			case http.MethodDelete:
				handleSurveyDelete(w, r, logger, services.Surveys, id, ownerID)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		case len(parts) == 2 && parts[1] == "scenarios":
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			handleSurveyScenarios(w, r, logger, services.Surveys, id, ownerID)
		case len(parts) == 2 && parts[1] == "responses":
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			handleResponseList(w, r, logger, services, id, ownerID)
		case len(parts) == 2 && parts[1] == "results":
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			handleResults(w, r, logger, services.Results, id, ownerID)
		case len(parts) == 2 && parts[1] == "panel-runs":
			switch r.Method {
			case http.MethodGet:
				handlePanelRunList(w, r, logger, services.Panel, id, ownerID)
			case http.MethodPost:
				handlePanelLaunch(w, r, logger, services.Panel, id, ownerID)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

// surveyPayload mirrors the survey configuration JSON accepted by the API.
type surveyPayload struct {
	Name               string           `json:"name"`
	Category           string           `json:"category"`
	PriceLevels        int              `json:"price_levels"`
	TasksPerRespondent int              `json:"tasks_per_respondent"`
	Products           []productPayload `json:"products"`
}

type productPayload struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path"`
	MinPrice    int64  `json:"min_price"`
	MaxPrice    int64  `json:"max_price"`
}

func (p surveyPayload) toInput() surveys.Input {
	input := surveys.Input{
		Name:               strings.TrimSpace(p.Name),
		Category:           strings.TrimSpace(p.Category),
		PriceLevels:        p.PriceLevels,
		TasksPerRespondent: p.TasksPerRespondent,
	}
	for _, product := range p.Products {
		input.Products = append(input.Products, surveys.ProductInput{
			Name:        strings.TrimSpace(product.Name),
			Brand:       strings.TrimSpace(product.Brand),
			Description: strings.TrimSpace(product.Description),
			ImagePath:   strings.TrimSpace(product.ImagePath),
			MinPrice:    product.MinPrice,
			MaxPrice:    product.MaxPrice,
		})
	}
	return input
}

func (p surveyPayload) validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "name is required"
	}
	for _, product := range p.Products {
		if path := strings.TrimSpace(product.ImagePath); path != "" && !upload.ValidWebPath(path) {
			return "image_path must reference an uploaded image"
		}
	}
	return ""
}

func handleSurveyCreate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service surveys.Service, ownerID string) {
	var payload surveyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if msg := payload.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	survey, err := service.Create(ownerID, payload.toInput())
	if err != nil {
		writeSurveyError(w, logger, "create survey", err)
		return
	}

	respondJSON(w, http.StatusCreated, survey)
}

func handleSurveyGet(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service surveys.Service, id, ownerID string) {
	survey, err := service.GetForOwner(id, ownerID)
	if err != nil {
		writeSurveyError(w, logger, "get survey", err)
		return
	}
	respondJSON(w, http.StatusOK, survey)
}

func handleSurveyUpdate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service surveys.Service, id, ownerID string) {
	var payload surveyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if msg := payload.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	survey, err := service.Update(id, ownerID, payload.toInput())
	if err != nil {
		writeSurveyError(w, logger, "update survey", err)
		return
	}
	respondJSON(w, http.StatusOK, survey)
}

func handleSurveyUpdateStatus(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service surveys.Service, id, ownerID string) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	status := surveys.Status(strings.TrimSpace(payload.Status))
	if status == "" {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	survey, err := service.UpdateStatus(id, ownerID, status)
	if err != nil {
		writeSurveyError(w, logger, "update survey status", err)
		return
	}
	respondJSON(w, http.StatusOK, survey)
}

func handleSurveyDelete(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service surveys.Service, id, ownerID string) {
	if err := service.Delete(id, ownerID); err != nil {
		writeSurveyError(w, logger, "delete survey", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleSurveyList(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service surveys.Service, ownerID string) {
	offset, limit, ok := pagination(w, r, 50)
	if !ok {
		return
	}

	results, err := service.ListForOwner(ownerID, offset, limit)
	if err != nil {
		writeSurveyError(w, logger, "list surveys", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  results,
		"count": len(results),
	})
}

func handleSurveyScenarios(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service surveys.Service, id, ownerID string) {
	preview, err := service.Scenarios(id, ownerID)
	if err != nil {
		writeSurveyError(w, logger, "preview scenarios", err)
		return
	}
	respondJSON(w, http.StatusOK, preview)
}

// writeSurveyError maps domain errors from the survey service onto HTTP
// statuses. Design validation failures (bad price ranges, too many
// products, and so on) surface as 400s with the underlying message.
func writeSurveyError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, surveys.ErrNotImplemented):
		respondError(w, http.StatusNotImplemented, op+" not yet implemented")
	case errors.Is(err, surveys.ErrNotFound):
		respondError(w, http.StatusNotFound, "survey not found")
	case errors.Is(err, surveys.ErrForbidden):
		respondError(w, http.StatusForbidden, "survey belongs to another owner")
	case errors.Is(err, surveys.ErrNotDraft):
		respondError(w, http.StatusConflict, "survey is no longer editable")
	case errors.Is(err, surveys.ErrBadTransition):
		respondError(w, http.StatusConflict, err.Error())
	case isDesignError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(op+" failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func isDesignError(err error) bool {
	return errors.Is(err, conjoint.ErrNoProducts) ||
		errors.Is(err, conjoint.ErrTooManyProducts) ||
		errors.Is(err, conjoint.ErrBadLevelCount) ||
		errors.Is(err, conjoint.ErrBadPriceRange) ||
		errors.Is(err, surveys.ErrBadInput)
}
