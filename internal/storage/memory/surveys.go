package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/shelflab/platform/internal/domain/surveys"
)

// SurveyRepository is an in-memory implementation of surveys.Repository.
type SurveyRepository struct {
	mu      sync.RWMutex
	surveys map[string]surveys.Survey
}

// NewSurveyRepository creates an in-memory survey repo.
func NewSurveyRepository() *SurveyRepository {
	return &SurveyRepository{
		surveys: make(map[string]surveys.Survey),
	}
}

func (r *SurveyRepository) FindByID(id string) (surveys.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.surveys[id]
	if !ok {
		return surveys.Survey{}, surveys.ErrNotFound
	}
	return cloneSurvey(s), nil
}

func (r *SurveyRepository) Save(survey surveys.Survey) (surveys.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if survey.ID == "" {
		survey.ID = newID()
		survey.CreatedAt = now
	} else {
		existing, ok := r.surveys[survey.ID]
		if ok && survey.CreatedAt.IsZero() {
			survey.CreatedAt = existing.CreatedAt
		}
	}
	survey.UpdatedAt = now

	// ensure product IDs and survey ID assignment
	for idx := range survey.Products {
		if survey.Products[idx].ID == "" {
			survey.Products[idx].ID = newID()
		}
		survey.Products[idx].SurveyID = survey.ID
		survey.Products[idx].SortOrder = idx
	}

	r.surveys[survey.ID] = cloneSurvey(survey)
	return survey, nil
}

func (r *SurveyRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.surveys[id]; !ok {
		return surveys.ErrNotFound
	}
	delete(r.surveys, id)
	return nil
}

func (r *SurveyRepository) ListByOwner(ownerID string, offset, limit int) ([]surveys.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []surveys.Survey
	for _, s := range r.surveys {
		if s.OwnerID == ownerID {
			list = append(list, cloneSurvey(s))
		}
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})

	if offset > len(list) {
		return []surveys.Survey{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}

func cloneSurvey(s surveys.Survey) surveys.Survey {
	out := s
	out.Products = make([]surveys.Product, len(s.Products))
	copy(out.Products, s.Products)
	return out
}
