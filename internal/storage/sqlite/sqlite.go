// Package sqlite backs the repositories with an embedded database. It is
// the single-binary deployment option; the schema is created in code so no
// external migration step is needed.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the database file and prepares the schema.
// Use ":memory:" for throwaway databases in tests.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// The modernc driver is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign_keys: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS surveys (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			price_levels INTEGER NOT NULL,
			tasks_per_respondent INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS survey_products (
			id TEXT PRIMARY KEY,
			survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			brand TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			image_path TEXT NOT NULL DEFAULT '',
			min_price INTEGER NOT NULL,
			max_price INTEGER NOT NULL,
			sort_order INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS responses (
			id TEXT PRIMARY KEY,
			survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
			respondent_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			persona TEXT NOT NULL DEFAULT '',
			levels TEXT NOT NULL,
			choice INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS panel_runs (
			id TEXT PRIMARY KEY,
			survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
			status TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			respondents INTEGER NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_surveys_owner ON surveys(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_products_survey ON survey_products(survey_id)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_survey ON responses(survey_id)`,
		`CREATE INDEX IF NOT EXISTS idx_panel_runs_survey ON panel_runs(survey_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
