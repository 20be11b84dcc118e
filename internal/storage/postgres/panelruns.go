package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelflab/platform/internal/domain/panel"
)

// PanelRunRepository persists synthetic panel run records.
type PanelRunRepository struct {
	db *sql.DB
}

// NewPanelRunRepository constructs a repository using a pooled DB handle.
func NewPanelRunRepository(db *sql.DB) *PanelRunRepository {
	return &PanelRunRepository{db: db}
}

// Save inserts or updates a run record.
func (r *PanelRunRepository) Save(run panel.Run) (panel.Run, error) {
	now := time.Now().UTC()
	if run.ID == "" {
		const insert = `
            INSERT INTO panel_runs (survey_id, status, model, respondents, completed, skipped, error, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
            RETURNING id
        `
		if err := r.db.QueryRow(insert,
			run.SurveyID,
			run.Status,
			run.Model,
			run.Respondents,
			run.Completed,
			run.Skipped,
			run.Error,
			now,
			now,
		).Scan(&run.ID); err != nil {
			return panel.Run{}, fmt.Errorf("insert panel run: %w", err)
		}
		run.CreatedAt = now
		run.UpdatedAt = now
		return run, nil
	}

	const update = `
        UPDATE panel_runs
           SET status = $2,
               completed = $3,
               skipped = $4,
               error = $5,
               updated_at = $6
         WHERE id = $1
        RETURNING created_at
    `
	var created time.Time
	if err := r.db.QueryRow(update,
		run.ID,
		run.Status,
		run.Completed,
		run.Skipped,
		run.Error,
		now,
	).Scan(&created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return panel.Run{}, panel.ErrRunNotFound
		}
		return panel.Run{}, fmt.Errorf("update panel run: %w", err)
	}
	run.CreatedAt = created
	run.UpdatedAt = now
	return run, nil
}

// FindByID retrieves a run record.
func (r *PanelRunRepository) FindByID(id string) (panel.Run, error) {
	const query = `
        SELECT id, survey_id, status, model, respondents, completed, skipped, error, created_at, updated_at
          FROM panel_runs
         WHERE id = $1
    `
	var run panel.Run
	err := r.db.QueryRow(query, id).Scan(
		&run.ID,
		&run.SurveyID,
		&run.Status,
		&run.Model,
		&run.Respondents,
		&run.Completed,
		&run.Skipped,
		&run.Error,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return panel.Run{}, panel.ErrRunNotFound
		}
		return panel.Run{}, fmt.Errorf("find panel run: %w", err)
	}
	return run, nil
}

// ListBySurvey returns run records for a survey, oldest first.
func (r *PanelRunRepository) ListBySurvey(surveyID string) ([]panel.Run, error) {
	const query = `
        SELECT id, survey_id, status, model, respondents, completed, skipped, error, created_at, updated_at
          FROM panel_runs
         WHERE survey_id = $1
         ORDER BY created_at
    `
	rows, err := r.db.Query(query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list panel runs: %w", err)
	}
	defer rows.Close()

	var result []panel.Run
	for rows.Next() {
		var run panel.Run
		if err := rows.Scan(
			&run.ID,
			&run.SurveyID,
			&run.Status,
			&run.Model,
			&run.Respondents,
			&run.Completed,
			&run.Skipped,
			&run.Error,
			&run.CreatedAt,
			&run.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan panel run: %w", err)
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	return result, nil
}
