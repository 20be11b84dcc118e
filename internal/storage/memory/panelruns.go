package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/shelflab/platform/internal/domain/panel"
)

// PanelRunRepository is an in-memory implementation of panel.Repository.
type PanelRunRepository struct {
	mu   sync.RWMutex
	runs map[string]panel.Run
}

// NewPanelRunRepository creates an in-memory panel run repo.
func NewPanelRunRepository() *PanelRunRepository {
	return &PanelRunRepository{
		runs: make(map[string]panel.Run),
	}
}

func (r *PanelRunRepository) Save(run panel.Run) (panel.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if run.ID == "" {
		run.ID = newID()
		run.CreatedAt = now
	} else if existing, ok := r.runs[run.ID]; ok && run.CreatedAt.IsZero() {
		run.CreatedAt = existing.CreatedAt
	}
	run.UpdatedAt = now

	r.runs[run.ID] = run
	return run, nil
}

func (r *PanelRunRepository) FindByID(id string) (panel.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return panel.Run{}, panel.ErrRunNotFound
	}
	return run, nil
}

func (r *PanelRunRepository) ListBySurvey(surveyID string) ([]panel.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []panel.Run
	for _, run := range r.runs {
		if run.SurveyID == surveyID {
			list = append(list, run)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
