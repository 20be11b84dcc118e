package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelflab/platform/internal/domain/surveys"
)

// SurveyRepository persists surveys and their products.
type SurveyRepository struct {
	db *sql.DB
}

// NewSurveyRepository constructs a repository using a pooled DB handle.
func NewSurveyRepository(db *sql.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// FindByID retrieves a survey and its products.
func (r *SurveyRepository) FindByID(id string) (surveys.Survey, error) {
	const query = `
        SELECT id, owner_id, name, category, status, price_levels, tasks_per_respondent, created_at, updated_at
          FROM surveys
         WHERE id = $1
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
         WHERE survey_id = $1
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
		const insert = `
            INSERT INTO surveys (owner_id, name, category, status, price_levels, tasks_per_respondent, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            RETURNING id
        `
		if err := tx.QueryRow(insert,
			s.OwnerID,
			s.Name,
			s.Category,
			s.Status,
			s.PriceLevels,
			s.TasksPerRespondent,
			now,
			now,
		).Scan(&s.ID); err != nil {
			tx.Rollback()
			return surveys.Survey{}, fmt.Errorf("insert survey: %w", err)
		}
		s.CreatedAt = now
		s.UpdatedAt = now
	} else {
		const update = `
            UPDATE surveys
               SET name = $2,
                   category = $3,
                   status = $4,
                   price_levels = $5,
                   tasks_per_respondent = $6,
                   updated_at = $7
             WHERE id = $1
            RETURNING created_at
        `
		var created time.Time
		if err := tx.QueryRow(update,
			s.ID,
			s.Name,
			s.Category,
			s.Status,
			s.PriceLevels,
			s.TasksPerRespondent,
			now,
		).Scan(&created); err != nil {
			tx.Rollback()
			if errors.Is(err, sql.ErrNoRows) {
				return surveys.Survey{}, surveys.ErrNotFound
			}
			return surveys.Survey{}, fmt.Errorf("update survey: %w", err)
		}
		s.CreatedAt = created
		s.UpdatedAt = now

		if err := deleteProducts(tx, s.ID); err != nil {
			tx.Rollback()
			return surveys.Survey{}, err
		}
	}

	if err := insertProducts(tx, &s); err != nil {
		tx.Rollback()
		return surveys.Survey{}, err
	}

	if err := tx.Commit(); err != nil {
		return surveys.Survey{}, fmt.Errorf("commit survey save: %w", err)
	}

	return s, nil
}

func deleteProducts(tx *sql.Tx, surveyID string) error {
	if _, err := tx.Exec(`DELETE FROM survey_products WHERE survey_id = $1`, surveyID); err != nil {
		return fmt.Errorf("delete survey products: %w", err)
	}
	return nil
}

func insertProducts(tx *sql.Tx, s *surveys.Survey) error {
	const insert = `
        INSERT INTO survey_products (id, survey_id, name, brand, description, image_path, min_price, max_price, sort_order)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `

	for idx := range s.Products {
		p := &s.Products[idx]
		if p.ID == "" {
			if err := tx.QueryRow(`SELECT gen_random_uuid()`).Scan(&p.ID); err != nil {
				return fmt.Errorf("generate product id: %w", err)
			}
		}
		p.SurveyID = s.ID
		p.SortOrder = idx

		if _, err := tx.Exec(insert,
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
			return fmt.Errorf("insert survey product: %w", err)
		}
	}

	return nil
}

// Delete removes a survey; products cascade at the schema level.
func (r *SurveyRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM surveys WHERE id = $1`, id)
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
         WHERE owner_id = $1
         ORDER BY created_at DESC
         OFFSET $2
         LIMIT $3
    `

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(query, ownerID, offset, limit)
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
		products, err := r.fetchProducts(s.ID)
		if err != nil {
			return nil, err
		}
		s.Products = products
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	return result, nil
}
