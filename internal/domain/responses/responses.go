package responses

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/shelflab/platform/internal/conjoint"
	"github.com/shelflab/platform/internal/domain/surveys"
)

var (
	ErrNotImplemented = errors.New("responses repository: not implemented")
	ErrNotFound       = errors.New("response not found")
	ErrSurveyNotLive  = errors.New("survey is not accepting responses")
	ErrBadChoice      = errors.New("choice does not match the survey design")
)

// Kind distinguishes real people from simulated panelists.
type Kind string

const (
	KindHuman     Kind = "human"
	KindSynthetic Kind = "synthetic"
)

// Response is one completed choice task.
type Response struct {
	ID           string    `json:"id"`
	SurveyID     string    `json:"survey_id"`
	RespondentID string    `json:"respondent_id"`
	Kind         Kind      `json:"kind"`
	Persona      string    `json:"persona,omitempty"` // synthetic responses only
	Levels       []int     `json:"levels"`            // price level shown per product
	Choice       int       `json:"choice"`            // product position, or -1 for none
	CreatedAt    time.Time `json:"created_at"`
}

// Observation converts a stored response for the conjoint tally.
func (r Response) Observation() conjoint.Observation {
	return conjoint.Observation{Levels: r.Levels, Choice: r.Choice}
}

// Repository abstracts response persistence.
type Repository interface {
	Save(response Response) (Response, error)
	ListBySurvey(surveyID string, offset, limit int) ([]Response, error)
	CountBySurvey(surveyID string) (int, error)
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) Save(Response) (Response, error) { return Response{}, ErrNotImplemented }
func (NullRepository) ListBySurvey(string, int, int) ([]Response, error) {
	return nil, ErrNotImplemented
}
func (NullRepository) CountBySurvey(string) (int, error) { return 0, ErrNotImplemented }

// SurveyGetter is the slice of the survey service this package needs.
type SurveyGetter interface {
	Get(id string) (surveys.Survey, error)
}

// TaskSet is a respondent's assignment: which scenarios to show, priced
// from the survey's grid.
type TaskSet struct {
	SurveyID     string    `json:"survey_id"`
	RespondentID string    `json:"respondent_id"`
	Grid         [][]int64 `json:"price_grid"`
	Tasks        [][]int   `json:"tasks"`
}

// SubmitInput is one choice submission.
type SubmitInput struct {
	SurveyID     string
	RespondentID string
	Kind         Kind
	Persona      string
	Levels       []int
	Choice       int
}

// Service serves choice tasks and records choices.
type Service interface {
	Tasks(surveyID, respondentID string) (TaskSet, error)
	Submit(input SubmitInput) (Response, error)
	ListBySurvey(surveyID string, offset, limit int) ([]Response, error)
	CountBySurvey(surveyID string) (int, error)
}

// NewService builds a response service.
func NewService(repo Repository, surveyGetter SurveyGetter) Service {
	return &service{repo: repo, surveys: surveyGetter}
}

type service struct {
	repo    Repository
	surveys SurveyGetter
}

// Tasks returns the respondent's scenario assignment. The sample is seeded
// by survey and respondent, so a reload serves the same tasks in the same
// order.
func (s *service) Tasks(surveyID, respondentID string) (TaskSet, error) {
	respondentID = strings.TrimSpace(respondentID)
	if respondentID == "" {
		return TaskSet{}, errors.New("respondent id is required")
	}

	survey, err := s.surveys.Get(surveyID)
	if err != nil {
		return TaskSet{}, err
	}
	if survey.Status != surveys.StatusLive {
		return TaskSet{}, ErrSurveyNotLive
	}

	grid, err := survey.PriceGrid()
	if err != nil {
		return TaskSet{}, err
	}

	seed := taskSeed(surveyID, respondentID)
	tasks := conjoint.SampleScenarios(len(survey.Products), survey.PriceLevels, survey.TasksPerRespondent, seed)

	return TaskSet{
		SurveyID:     survey.ID,
		RespondentID: respondentID,
		Grid:         grid,
		Tasks:        tasks,
	}, nil
}

func (s *service) Submit(input SubmitInput) (Response, error) {
	survey, err := s.surveys.Get(input.SurveyID)
	if err != nil {
		return Response{}, err
	}
	if survey.Status != surveys.StatusLive {
		return Response{}, ErrSurveyNotLive
	}

	if strings.TrimSpace(input.RespondentID) == "" {
		return Response{}, errors.New("respondent id is required")
	}

	kind := input.Kind
	if kind == "" {
		kind = KindHuman
	}
	if kind != KindHuman && kind != KindSynthetic {
		return Response{}, fmt.Errorf("unknown respondent kind: %s", kind)
	}

	if err := validateChoice(survey, input.Levels, input.Choice); err != nil {
		return Response{}, err
	}

	return s.repo.Save(Response{
		SurveyID:     survey.ID,
		RespondentID: strings.TrimSpace(input.RespondentID),
		Kind:         kind,
		Persona:      strings.TrimSpace(input.Persona),
		Levels:       input.Levels,
		Choice:       input.Choice,
	})
}

func (s *service) ListBySurvey(surveyID string, offset, limit int) ([]Response, error) {
	return s.repo.ListBySurvey(surveyID, offset, limit)
}

func (s *service) CountBySurvey(surveyID string) (int, error) {
	return s.repo.CountBySurvey(surveyID)
}

func validateChoice(survey surveys.Survey, levels []int, choice int) error {
	if len(levels) != len(survey.Products) {
		return fmt.Errorf("expected %d levels, got %d: %w", len(survey.Products), len(levels), ErrBadChoice)
	}
	for i, lvl := range levels {
		if lvl < 0 || lvl >= survey.PriceLevels {
			return fmt.Errorf("product %d level %d out of range: %w", i, lvl, ErrBadChoice)
		}
	}
	if choice < conjoint.NoneChoice || choice >= len(survey.Products) {
		return fmt.Errorf("choice %d out of range: %w", choice, ErrBadChoice)
	}
	return nil
}

func taskSeed(surveyID, respondentID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(surveyID))
	h.Write([]byte{'/'})
	h.Write([]byte(respondentID))
	return int64(h.Sum64())
}
