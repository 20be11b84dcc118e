package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shelflab/platform/internal/domain/responses"
)

// ResponseRepository persists choice responses. The per-product level
// vector is stored as a JSON array column.
type ResponseRepository struct {
	db *sql.DB
}

// NewResponseRepository constructs a repository using a pooled DB handle.
func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Save inserts a response. Responses are immutable; there is no update path.
func (r *ResponseRepository) Save(resp responses.Response) (responses.Response, error) {
	levels, err := json.Marshal(resp.Levels)
	if err != nil {
		return responses.Response{}, fmt.Errorf("encode levels: %w", err)
	}

	const insert = `
        INSERT INTO responses (survey_id, respondent_id, kind, persona, levels, choice, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id
    `

	now := time.Now().UTC()
	if err := r.db.QueryRow(insert,
		resp.SurveyID,
		resp.RespondentID,
		resp.Kind,
		resp.Persona,
		levels,
		resp.Choice,
		now,
	).Scan(&resp.ID); err != nil {
		return responses.Response{}, fmt.Errorf("insert response: %w", err)
	}
	resp.CreatedAt = now

	return resp, nil
}

// ListBySurvey returns responses for a survey in submission order. A limit
// of zero or less lists everything.
func (r *ResponseRepository) ListBySurvey(surveyID string, offset, limit int) ([]responses.Response, error) {
	query := `
        SELECT id, respondent_id, kind, persona, levels, choice, created_at
          FROM responses
         WHERE survey_id = $1
         ORDER BY created_at
         OFFSET $2
    `
	args := []any{surveyID, offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var result []responses.Response
	for rows.Next() {
		var resp responses.Response
		var levels []byte
		resp.SurveyID = surveyID
		if err := rows.Scan(
			&resp.ID,
			&resp.RespondentID,
			&resp.Kind,
			&resp.Persona,
			&levels,
			&resp.Choice,
			&resp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if err := json.Unmarshal(levels, &resp.Levels); err != nil {
			return nil, fmt.Errorf("decode levels for response %s: %w", resp.ID, err)
		}
		result = append(result, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	return result, nil
}

// CountBySurvey returns the number of stored responses for a survey.
func (r *ResponseRepository) CountBySurvey(surveyID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT count(*) FROM responses WHERE survey_id = $1`, surveyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return count, nil
}
