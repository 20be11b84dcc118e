package surveys

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shelflab/platform/internal/conjoint"
)

var (
	ErrNotImplemented = errors.New("surveys repository: not implemented")
	ErrNotFound       = errors.New("survey not found")
	ErrForbidden      = errors.New("survey belongs to another owner")
	ErrNotDraft       = errors.New("survey is no longer editable")
	ErrBadTransition  = errors.New("illegal survey status transition")
	ErrBadInput       = errors.New("invalid survey configuration")
)

const (
	MaxTasksPerRespondent = 20

	defaultPriceLevels        = 3
	defaultTasksPerRespondent = 10
	previewSampleSize         = 12
	previewSeed               = 1
)

// Survey configures one digital-shelf test: up to six products shown
// side by side, each at one of the generated price levels.
type Survey struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"owner_id"`
	Name               string    `json:"name"`
	Category           string    `json:"category,omitempty"`
	Status             Status    `json:"status"`
	PriceLevels        int       `json:"price_levels"`
	TasksPerRespondent int       `json:"tasks_per_respondent"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Products           []Product `json:"products"`
}

// Product is one shelf position within a survey.
type Product struct {
	ID          string `json:"id"`
	SurveyID    string `json:"survey_id"`
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Description string `json:"description,omitempty"`
	ImagePath   string `json:"image_path,omitempty"`
	MinPrice    int64  `json:"min_price"` // cents
	MaxPrice    int64  `json:"max_price"`
	SortOrder   int    `json:"sort_order"`
}

// Status represents the survey lifecycle.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusLive   Status = "live"
	StatusClosed Status = "closed"
)

// PriceRanges maps the shelf to the conjoint engine's input.
func (s Survey) PriceRanges() []conjoint.PriceRange {
	ranges := make([]conjoint.PriceRange, len(s.Products))
	for i, p := range s.Products {
		ranges[i] = conjoint.PriceRange{Min: p.MinPrice, Max: p.MaxPrice}
	}
	return ranges
}

// PriceGrid generates the survey's price-level matrix.
func (s Survey) PriceGrid() ([][]int64, error) {
	return conjoint.BuildPriceGrid(s.PriceRanges(), s.PriceLevels)
}

// Repository abstracts survey persistence. Save persists the survey and its
// products as one aggregate.
type Repository interface {
	FindByID(id string) (Survey, error)
	Save(survey Survey) (Survey, error)
	Delete(id string) error
	ListByOwner(ownerID string, offset, limit int) ([]Survey, error)
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) FindByID(string) (Survey, error) { return Survey{}, ErrNotImplemented }
func (NullRepository) Save(Survey) (Survey, error)     { return Survey{}, ErrNotImplemented }
func (NullRepository) Delete(string) error             { return ErrNotImplemented }
func (NullRepository) ListByOwner(string, int, int) ([]Survey, error) {
	return nil, ErrNotImplemented
}

// Input captures survey configuration from the API.
type Input struct {
	Name               string
	Category           string
	PriceLevels        int
	TasksPerRespondent int
	Products           []ProductInput
}

// ProductInput describes one product when creating or updating a survey.
type ProductInput struct {
	Name        string
	Brand       string
	Description string
	ImagePath   string
	MinPrice    int64
	MaxPrice    int64
}

// ScenarioPreview lets a researcher inspect the generated design before
// going live.
type ScenarioPreview struct {
	Grid          [][]int64 `json:"price_grid"`
	ScenarioCount int       `json:"scenario_count"`
	Sample        [][]int   `json:"sample"`
}

// Service provides survey configuration logic.
type Service interface {
	Create(ownerID string, input Input) (Survey, error)
	Get(id string) (Survey, error)
	GetForOwner(id, ownerID string) (Survey, error)
	Update(id, ownerID string, input Input) (Survey, error)
	UpdateStatus(id, ownerID string, status Status) (Survey, error)
	Delete(id, ownerID string) error
	ListForOwner(ownerID string, offset, limit int) ([]Survey, error)
	Scenarios(id, ownerID string) (ScenarioPreview, error)
}

// NewService builds a survey service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

type service struct {
	repo Repository
}

func (s *service) Create(ownerID string, input Input) (Survey, error) {
	survey, err := buildSurvey(ownerID, input)
	if err != nil {
		return Survey{}, err
	}
	return s.repo.Save(survey)
}

func (s *service) Get(id string) (Survey, error) {
	return s.repo.FindByID(id)
}

func (s *service) GetForOwner(id, ownerID string) (Survey, error) {
	survey, err := s.repo.FindByID(id)
	if err != nil {
		return Survey{}, err
	}
	if survey.OwnerID != ownerID {
		return Survey{}, ErrForbidden
	}
	return survey, nil
}

func (s *service) Update(id, ownerID string, input Input) (Survey, error) {
	existing, err := s.GetForOwner(id, ownerID)
	if err != nil {
		return Survey{}, err
	}
	if existing.Status != StatusDraft {
		return Survey{}, ErrNotDraft
	}

	updated, err := buildSurvey(ownerID, input)
	if err != nil {
		return Survey{}, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.Status = existing.Status
	return s.repo.Save(updated)
}

func (s *service) UpdateStatus(id, ownerID string, status Status) (Survey, error) {
	survey, err := s.GetForOwner(id, ownerID)
	if err != nil {
		return Survey{}, err
	}
	if !legalTransition(survey.Status, status) {
		return Survey{}, fmt.Errorf("%s -> %s: %w", survey.Status, status, ErrBadTransition)
	}
	survey.Status = status
	return s.repo.Save(survey)
}

func (s *service) Delete(id, ownerID string) error {
	survey, err := s.GetForOwner(id, ownerID)
	if err != nil {
		return err
	}
	if survey.Status != StatusDraft {
		return ErrNotDraft
	}
	return s.repo.Delete(id)
}

func (s *service) ListForOwner(ownerID string, offset, limit int) ([]Survey, error) {
	return s.repo.ListByOwner(ownerID, offset, limit)
}

func (s *service) Scenarios(id, ownerID string) (ScenarioPreview, error) {
	survey, err := s.GetForOwner(id, ownerID)
	if err != nil {
		return ScenarioPreview{}, err
	}

	grid, err := survey.PriceGrid()
	if err != nil {
		return ScenarioPreview{}, err
	}

	products := len(survey.Products)
	return ScenarioPreview{
		Grid:          grid,
		ScenarioCount: conjoint.ScenarioCount(products, survey.PriceLevels),
		Sample:        conjoint.SampleScenarios(products, survey.PriceLevels, previewSampleSize, previewSeed),
	}, nil
}

func legalTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusLive
	case StatusLive:
		return to == StatusClosed
	default:
		return false
	}
}

func buildSurvey(ownerID string, input Input) (Survey, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Survey{}, fmt.Errorf("%w: survey name is required", ErrBadInput)
	}

	levels := input.PriceLevels
	if levels == 0 {
		levels = defaultPriceLevels
	}
	tasks := input.TasksPerRespondent
	if tasks == 0 {
		tasks = defaultTasksPerRespondent
	}
	if tasks < 1 || tasks > MaxTasksPerRespondent {
		return Survey{}, fmt.Errorf("%w: tasks per respondent must be between 1 and %d", ErrBadInput, MaxTasksPerRespondent)
	}

	survey := Survey{
		OwnerID:            ownerID,
		Name:               name,
		Category:           strings.TrimSpace(input.Category),
		Status:             StatusDraft,
		PriceLevels:        levels,
		TasksPerRespondent: tasks,
	}

	for idx, p := range input.Products {
		productName := strings.TrimSpace(p.Name)
		if productName == "" {
			return Survey{}, fmt.Errorf("%w: product %d: name is required", ErrBadInput, idx+1)
		}
		if p.MinPrice <= 0 {
			return Survey{}, fmt.Errorf("%w: product %d: min price must be positive", ErrBadInput, idx+1)
		}
		survey.Products = append(survey.Products, Product{
			Name:        productName,
			Brand:       strings.TrimSpace(p.Brand),
			Description: strings.TrimSpace(p.Description),
			ImagePath:   strings.TrimSpace(p.ImagePath),
			MinPrice:    p.MinPrice,
			MaxPrice:    p.MaxPrice,
			SortOrder:   idx,
		})
	}

	// Validates product count, level count and price ranges in one place.
	if _, err := survey.PriceGrid(); err != nil {
		return Survey{}, err
	}

	return survey, nil
}
