package results

import (
	"fmt"

	"github.com/shelflab/platform/internal/conjoint"
	"github.com/shelflab/platform/internal/domain/responses"
	"github.com/shelflab/platform/internal/domain/surveys"
)

// ProductSummary pairs a product's identity with its tallied performance.
type ProductSummary struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand,omitempty"`
	conjoint.ProductResult
}

// Summary is the survey readout: preference shares, per-level shares and
// elasticity for every shelf position.
type Summary struct {
	SurveyID     string           `json:"survey_id"`
	Status       surveys.Status   `json:"status"`
	Kind         responses.Kind   `json:"kind,omitempty"`
	Observations int              `json:"observations"`
	NoneShare    float64          `json:"none_share"`
	Products     []ProductSummary `json:"products"`
}

// SurveyAccessor is the slice of the survey service this package needs.
type SurveyAccessor interface {
	GetForOwner(id, ownerID string) (surveys.Survey, error)
}

// ResponseLister loads every stored response for a survey.
type ResponseLister interface {
	ListBySurvey(surveyID string, offset, limit int) ([]responses.Response, error)
}

// Service computes survey results on demand.
type Service interface {
	// ForSurvey tallies results, optionally restricted to one respondent
	// kind (empty kind means all responses).
	ForSurvey(surveyID, ownerID string, kind responses.Kind) (Summary, error)
}

// NewService builds a results service.
func NewService(surveyAccess SurveyAccessor, lister ResponseLister) Service {
	return &service{surveys: surveyAccess, responses: lister}
}

type service struct {
	surveys   SurveyAccessor
	responses ResponseLister
}

func (s *service) ForSurvey(surveyID, ownerID string, kind responses.Kind) (Summary, error) {
	survey, err := s.surveys.GetForOwner(surveyID, ownerID)
	if err != nil {
		return Summary{}, err
	}

	grid, err := survey.PriceGrid()
	if err != nil {
		return Summary{}, err
	}

	// A limit of zero or less lists every response.
	stored, err := s.responses.ListBySurvey(surveyID, 0, 0)
	if err != nil {
		return Summary{}, err
	}

	observations := make([]conjoint.Observation, 0, len(stored))
	for _, r := range stored {
		if kind != "" && r.Kind != kind {
			continue
		}
		observations = append(observations, r.Observation())
	}

	tally, err := conjoint.ComputeResults(grid, observations)
	if err != nil {
		return Summary{}, fmt.Errorf("tally survey %s: %w", surveyID, err)
	}

	summary := Summary{
		SurveyID:     survey.ID,
		Status:       survey.Status,
		Kind:         kind,
		Observations: tally.Observations,
		NoneShare:    tally.NoneShare,
		Products:     make([]ProductSummary, len(survey.Products)),
	}
	for i, p := range survey.Products {
		summary.Products[i] = ProductSummary{
			ProductID:     p.ID,
			Name:          p.Name,
			Brand:         p.Brand,
			ProductResult: tally.Products[i],
		}
	}
	return summary, nil
}
