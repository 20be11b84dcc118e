package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shelflab/platform/internal/domain/responses"
)

// ResponseRepository persists choice responses in sqlite. The level vector
// is stored as a JSON array in a text column.
type ResponseRepository struct {
	db *sql.DB
}

// NewResponseRepository constructs a repository on an opened sqlite handle.
func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Save inserts a response. Responses are immutable; there is no update path.
func (r *ResponseRepository) Save(resp responses.Response) (responses.Response, error) {
	levels, err := json.Marshal(resp.Levels)
	if err != nil {
		return responses.Response{}, fmt.Errorf("encode levels: %w", err)
	}

	resp.ID = newID()
	resp.CreatedAt = time.Now().UTC()

	const insert = `
        INSERT INTO responses (id, survey_id, respondent_id, kind, persona, levels, choice, created_at)
        VALUES (?,?,?,?,?,?,?,?)
    `
	if _, err := r.db.Exec(insert,
		resp.ID,
		resp.SurveyID,
		resp.RespondentID,
		resp.Kind,
		resp.Persona,
		string(levels),
		resp.Choice,
		resp.CreatedAt,
	); err != nil {
		return responses.Response{}, fmt.Errorf("insert response: %w", err)
	}

	return resp, nil
}

// ListBySurvey returns responses for a survey in submission order. A limit
// of zero or less lists everything.
func (r *ResponseRepository) ListBySurvey(surveyID string, offset, limit int) ([]responses.Response, error) {
	// sqlite requires LIMIT when OFFSET is used; -1 means unbounded.
	if limit <= 0 {
		limit = -1
	}

	const query = `
        SELECT id, respondent_id, kind, persona, levels, choice, created_at
          FROM responses
         WHERE survey_id = ?
         ORDER BY created_at
         LIMIT ? OFFSET ?
    `

	rows, err := r.db.Query(query, surveyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var result []responses.Response
	for rows.Next() {
		var resp responses.Response
		var levels string
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
		if err := json.Unmarshal([]byte(levels), &resp.Levels); err != nil {
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
	err := r.db.QueryRow(`SELECT count(*) FROM responses WHERE survey_id = ?`, surveyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return count, nil
}
