package domain

import (
	"time"

	"log/slog"

	"github.com/shelflab/platform/internal/domain/panel"
	"github.com/shelflab/platform/internal/domain/responses"
	"github.com/shelflab/platform/internal/domain/results"
	"github.com/shelflab/platform/internal/domain/sessions"
	"github.com/shelflab/platform/internal/domain/surveys"
	"github.com/shelflab/platform/internal/domain/users"
)

// Container wires domain services together on top of whichever storage
// backend cmd/api selected.
type Container struct {
	Users     users.Service
	Sessions  sessions.Service
	Surveys   surveys.Service
	Responses responses.Service
	Panel     panel.Service
	Results   results.Service
}

// Options configures the domain container.
type Options struct {
	UserRepo     users.Repository
	SurveyRepo   surveys.Repository
	ResponseRepo responses.Repository
	PanelRunRepo panel.Repository

	SessionTTL time.Duration

	Chooser             panel.Chooser
	Personas            []panel.Persona
	PanelModel          string
	PanelMaxConcurrency int

	Logger *slog.Logger
}

// New constructs a domain container with provided repositories.
func New(opts Options) Container {
	userRepo := opts.UserRepo
	if userRepo == nil {
		userRepo = users.NullRepository{}
	}

	surveyRepo := opts.SurveyRepo
	if surveyRepo == nil {
		surveyRepo = surveys.NullRepository{}
	}

	responseRepo := opts.ResponseRepo
	if responseRepo == nil {
		responseRepo = responses.NullRepository{}
	}

	runRepo := opts.PanelRunRepo
	if runRepo == nil {
		runRepo = panel.NullRepository{}
	}

	surveyService := surveys.NewService(surveyRepo)
	responseService := responses.NewService(responseRepo, surveyService)

	panelService := panel.NewService(runRepo, surveyService, responseService, opts.Chooser, panel.Options{
		Personas:       opts.Personas,
		Model:          opts.PanelModel,
		MaxConcurrency: opts.PanelMaxConcurrency,
		Logger:         opts.Logger,
	})

	return Container{
		Users:     users.NewService(userRepo),
		Sessions:  sessions.NewService(opts.SessionTTL),
		Surveys:   surveyService,
		Responses: responseService,
		Panel:     panelService,
		Results:   results.NewService(surveyService, responseService),
	}
}
