package panel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shelflab/platform/internal/domain/responses"
	"github.com/shelflab/platform/internal/domain/surveys"
)

var (
	ErrNotImplemented = errors.New("panel repository: not implemented")
	ErrRunNotFound    = errors.New("panel run not found")
	ErrNoChooser      = errors.New("no panel chooser configured")
)

const (
	defaultRespondents = 50
	maxRespondents     = 500

	defaultMaxConcurrency = 4
)

// Run records one synthetic panel execution against a survey.
type Run struct {
	ID          string    `json:"id"`
	SurveyID    string    `json:"survey_id"`
	Status      RunStatus `json:"status"`
	Model       string    `json:"model"`
	Respondents int       `json:"respondents"`
	Completed   int       `json:"completed"` // choice tasks answered and stored
	Skipped     int       `json:"skipped"`   // tasks the chooser could not answer
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RunStatus represents panel run lifecycle.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Repository abstracts panel run persistence.
type Repository interface {
	Save(run Run) (Run, error)
	FindByID(id string) (Run, error)
	ListBySurvey(surveyID string) ([]Run, error)
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) Save(Run) (Run, error)              { return Run{}, ErrNotImplemented }
func (NullRepository) FindByID(string) (Run, error)       { return Run{}, ErrNotImplemented }
func (NullRepository) ListBySurvey(string) ([]Run, error) { return nil, ErrNotImplemented }

// SurveyAccessor is the slice of the survey service this package needs.
type SurveyAccessor interface {
	GetForOwner(id, ownerID string) (surveys.Survey, error)
}

// ResponseRecorder serves tasks and stores synthetic choices through the
// same validation path human responses take.
type ResponseRecorder interface {
	Tasks(surveyID, respondentID string) (responses.TaskSet, error)
	Submit(input responses.SubmitInput) (responses.Response, error)
}

// LaunchInput configures a panel run.
type LaunchInput struct {
	Respondents int
}

// Service launches and inspects synthetic panel runs.
type Service interface {
	Launch(ctx context.Context, surveyID, ownerID string, input LaunchInput) (Run, error)
	ListBySurvey(surveyID, ownerID string) ([]Run, error)
	Personas() []Persona
}

// Options configures the panel service.
type Options struct {
	Personas       []Persona
	Model          string // recorded on runs, e.g. "heuristic" or a Gemini model name
	MaxConcurrency int
	Logger         *slog.Logger
}

// NewService builds a panel service.
func NewService(repo Repository, surveyAccess SurveyAccessor, recorder ResponseRecorder, chooser Chooser, opts Options) Service {
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:           repo,
		surveys:        surveyAccess,
		recorder:       recorder,
		chooser:        chooser,
		personas:       opts.Personas,
		model:          opts.Model,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

type service struct {
	repo           Repository
	surveys        SurveyAccessor
	recorder       ResponseRecorder
	chooser        Chooser
	personas       []Persona
	model          string
	maxConcurrency int
	logger         *slog.Logger
}

// Launch runs a synthetic panel to completion. Respondents are simulated
// concurrently; each answers its full task assignment in character. A
// skipped task does not fail the run, a chooser transport error does, but
// choices stored before the failure are kept.
func (s *service) Launch(ctx context.Context, surveyID, ownerID string, input LaunchInput) (Run, error) {
	if s.chooser == nil {
		return Run{}, ErrNoChooser
	}
	if len(s.personas) == 0 {
		return Run{}, errors.New("no personas configured")
	}

	survey, err := s.surveys.GetForOwner(surveyID, ownerID)
	if err != nil {
		return Run{}, err
	}
	if survey.Status != surveys.StatusLive {
		return Run{}, responses.ErrSurveyNotLive
	}

	respondents := input.Respondents
	if respondents <= 0 {
		respondents = defaultRespondents
	}
	if respondents > maxRespondents {
		return Run{}, fmt.Errorf("respondent count %d exceeds limit %d", respondents, maxRespondents)
	}

	run, err := s.repo.Save(Run{
		SurveyID:    survey.ID,
		Status:      RunStatusRunning,
		Model:       s.model,
		Respondents: respondents,
	})
	if err != nil {
		return Run{}, err
	}

	s.logger.Info("panel run started",
		"run_id", run.ID, "survey_id", survey.ID, "respondents", respondents, "model", s.model)

	var completed, skipped atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrency)
	for i := 0; i < respondents; i++ {
		persona := s.personas[i%len(s.personas)]
		group.Go(func() error {
			return s.simulateRespondent(groupCtx, survey, persona, &completed, &skipped)
		})
	}

	runErr := group.Wait()

	run.Completed = int(completed.Load())
	run.Skipped = int(skipped.Load())
	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
		s.logger.Error("panel run failed", "run_id", run.ID, "err", runErr)
	} else {
		run.Status = RunStatusCompleted
		s.logger.Info("panel run completed",
			"run_id", run.ID, "completed", run.Completed, "skipped", run.Skipped)
	}

	saved, err := s.repo.Save(run)
	if err != nil {
		return Run{}, err
	}
	if runErr != nil {
		return saved, runErr
	}
	return saved, nil
}

func (s *service) simulateRespondent(ctx context.Context, survey surveys.Survey, persona Persona, completed, skipped *atomic.Int64) error {
	respondentID := "synthetic-" + uuid.NewString()

	taskSet, err := s.recorder.Tasks(survey.ID, respondentID)
	if err != nil {
		return err
	}

	for _, levels := range taskSet.Tasks {
		if err := ctx.Err(); err != nil {
			return err
		}

		items := shelfForTask(survey.Products, taskSet.Grid, levels)
		choice, err := s.chooser.Choose(ctx, persona, items)
		if err != nil {
			if errors.Is(err, ErrSkip) {
				skipped.Add(1)
				s.logger.Debug("panel task skipped", "respondent", respondentID, "err", err)
				continue
			}
			return err
		}

		if _, err := s.recorder.Submit(responses.SubmitInput{
			SurveyID:     survey.ID,
			RespondentID: respondentID,
			Kind:         responses.KindSynthetic,
			Persona:      persona.Name,
			Levels:       levels,
			Choice:       choice,
		}); err != nil {
			return err
		}
		completed.Add(1)
	}
	return nil
}

func (s *service) ListBySurvey(surveyID, ownerID string) ([]Run, error) {
	if _, err := s.surveys.GetForOwner(surveyID, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListBySurvey(surveyID)
}

func (s *service) Personas() []Persona {
	return s.personas
}

func shelfForTask(products []surveys.Product, grid [][]int64, levels []int) []ShelfItem {
	items := make([]ShelfItem, len(levels))
	for i, lvl := range levels {
		items[i] = ShelfItem{
			Name:        products[i].Name,
			Brand:       products[i].Brand,
			Description: products[i].Description,
			Price:       grid[i][lvl],
		}
	}
	return items
}
