package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelflab/platform/internal/domain/surveys"
)

// SurveyRepository persists surveys and their products in sqlite.
type SurveyRepository struct {
	db *sql.DB
}

// NewSurveyRepository constructs a repository on an opened sqlite handle.
func NewSurveyRepository(db *sql.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// FindByID retrieves a survey and its products.
func (r *SurveyRepository) FindByID(id string) (surveys.Survey, error) {
	const query = `
        SELECT id, owner_id, name, category, status, price_levels, tasks_per_respondent, created_at, updated_at
          FROM surveys
         WHERE id = ?
    `

	var s surveys.Survey
	err := r.db.QueryRow(query, id).Scan(
		&s.ID,
		&s.OwnerID,
		&s.Name,
		&s.Category,
		&s.Status,
		&s.PriceLevels,
		&s.TasksPerRespondent,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return surveys.Survey{}, surveys.ErrNotFound
		}
		return surveys.Survey{}, fmt.Errorf("find survey: %w", err)
	}

	products, err := r.fetchProducts(s.ID)
	if err != nil {
		return surveys.Survey{}, err
	}
	s.Products = products

	return s, nil
}

func (r *SurveyRepository) fetchProducts(surveyID string) ([]surveys.Product, error) {
	const query = `
        SELECT id, name, brand, description, image_path, min_price, max_price, sort_order
          FROM survey_products
         WHERE survey_id = ?
         ORDER BY sort_order
    `

	rows, err := r.db.Query(query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list survey products: %w", err)
	}
	defer rows.Close()

	var products []surveys.Product
	for rows.Next() {
		var p surveys.Product
		p.SurveyID = surveyID
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Brand,
			&p.Description,
			&p.ImagePath,
			&p.MinPrice,
			&p.MaxPrice,
			&p.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("scan survey product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products rows err: %w", err)
	}

	return products, nil
}

// Save inserts or updates a survey with its products.
func (r *SurveyRepository) Save(s surveys.Survey) (surveys.Survey, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return surveys.Survey{}, fmt.Errorf("begin tx: %w", err)
	}

	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = newID()
		s.CreatedAt = now
		s.UpdatedAt = now
		const insert = `
            INSERT INTO surveys (id, owner_id, name, category, status, price_levels, tasks_per_respondent, created_at, updated_at)
            VALUES (?,?,?,?,?,?,?,?,?)
        `
		if _, err := tx.Exec(insert,
			s.ID,
			s.OwnerID,
			s.Name,
			s.Category,
			s.Status,
			s.PriceLevels,
			s.TasksPerRespondent,
			s.CreatedAt,
			s.UpdatedAt,
		); err != nil {
			tx.Rollback()
			return surveys.Survey{}, fmt.Errorf("insert survey: %w", err)
		}
	} else {
		const update = `
            UPDATE surveys
               SET name = ?, category = ?, status = ?, price_levels = ?, tasks_per_respondent = ?, updated_at = ?
             WHERE id = ?
        `
		result, err := tx.Exec(update,
			s.Name,
			s.Category,
			s.Status,
			s.PriceLevels,
			s.TasksPerRespondent,
			now,
			s.ID,
		)
		if err != nil {
			tx.Rollback()
			return surveys.Survey{}, fmt.Errorf("update survey: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			tx.Rollback()
			return surveys.Survey{}, fmt.Errorf("update survey rows affected: %w", err)
		}
		if affected == 0 {
			tx.Rollback()
			return surveys.Survey{}, surveys.ErrNotFound
		}
		s.UpdatedAt = now

		if _, err := tx.Exec(`DELETE FROM survey_products WHERE survey_id = ?`, s.ID); err != nil {
			tx.Rollback()
			return surveys.Survey{}, fmt.Errorf("delete survey products: %w", err)
		}
	}

	const insertProduct = `
        INSERT INTO survey_products (id, survey_id, name, brand, description, image_path, min_price, max_price, sort_order)
        VALUES (?,?,?,?,?,?,?,?,?)
    `
	for idx := range s.Products {
		p := &s.Products[idx]
		if p.ID == "" {
			p.ID = newID()
		}
		p.SurveyID = s.ID
		p.SortOrder = idx

		if _, err := tx.Exec(insertProduct,
			p.ID,
			s.ID,
			p.Name,
			p.Brand,
			p.Description,
			p.ImagePath,
			p.MinPrice,
			p.MaxPrice,
			idx,
		); err != nil {
			tx.Rollback()
			return surveys.Survey{}, fmt.Errorf("insert survey product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return surveys.Survey{}, fmt.Errorf("commit survey save: %w", err)
	}

	return s, nil
}

// Delete removes a survey; products cascade at the schema level.
func (r *SurveyRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM surveys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete survey rows affected: %w", err)
	}
	if affected == 0 {
		return surveys.ErrNotFound
	}
	return nil
}

// ListByOwner returns paginated surveys for an owner.
func (r *SurveyRepository) ListByOwner(ownerID string, offset, limit int) ([]surveys.Survey, error) {
	const query = `
        SELECT id, owner_id, name, category, status, price_levels, tasks_per_respondent, created_at, updated_at
          FROM surveys
         WHERE owner_id = ?
         ORDER BY created_at DESC
         LIMIT ? OFFSET ?
    `

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var result []surveys.Survey
	for rows.Next() {
		var s surveys.Survey
		if err := rows.Scan(
			&s.ID,
			&s.OwnerID,
			&s.Name,
			&s.Category,
			&s.Status,
			&s.PriceLevels,
			&s.TasksPerRespondent,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	// Fetch products only after the survey rows are drained: the pool is
	// capped at one connection, so a nested query would deadlock.
	rows.Close()

	for i := range result {
		products, err := r.fetchProducts(result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Products = products
	}

	return result, nil
}
