package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/shelflab/platform/internal/domain/responses"
)

// ResponseRepository is an in-memory implementation of responses.Repository.
type ResponseRepository struct {
	mu        sync.RWMutex
	responses map[string]responses.Response
}

// NewResponseRepository creates an in-memory response repo.
func NewResponseRepository() *ResponseRepository {
	return &ResponseRepository{
		responses: make(map[string]responses.Response),
	}
}

func (r *ResponseRepository) Save(response responses.Response) (responses.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if response.ID == "" {
		response.ID = newID()
		response.CreatedAt = time.Now().UTC()
	}

	stored := response
	stored.Levels = make([]int, len(response.Levels))
	copy(stored.Levels, response.Levels)

	r.responses[response.ID] = stored
	return response, nil
}

func (r *ResponseRepository) ListBySurvey(surveyID string, offset, limit int) ([]responses.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []responses.Response
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			list = append(list, resp)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})

	if offset > len(list) {
		return []responses.Response{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}

func (r *ResponseRepository) CountBySurvey(surveyID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			count++
		}
	}
	return count, nil
}
