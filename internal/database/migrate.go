package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"log/slog"
)

// Migrator defines an interface capable of applying schema migrations.
type Migrator interface {
	Up(ctx context.Context) error
}

// SQLMigrator executes .sql migration files against a database connection.
// Applied files are recorded in a schema_migrations table so re-running
// the migrator on an up-to-date database is a no-op.
type SQLMigrator struct {
	Logger *slog.Logger
	DB     *sql.DB
	FS     fs.FS
	Path   string
}

// NewSQLMigrator builds a migrator that runs SQL statements from the provided filesystem.
func NewSQLMigrator(db *sql.DB, f fs.FS, dir string, logger *slog.Logger) *SQLMigrator {
	return &SQLMigrator{DB: db, FS: f, Path: dir, Logger: logger}
}

// Up executes all pending *.up.sql files in lexical order.
func (m *SQLMigrator) Up(ctx context.Context) error {
	if m == nil {
		return errors.New("sql migrator is nil")
	}
	if m.DB == nil {
		return errors.New("sql migrator requires a database handle")
	}
	if m.FS == nil {
		return errors.New("sql migrator requires a filesystem")
	}
	if m.Path == "" {
		return errors.New("sql migrator requires a path")
	}

	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := m.ensureVersionTable(ctx); err != nil {
		return err
	}

	done, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(m.FS, m.Path)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	applied := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		if done[name] {
			continue
		}

		contents, err := fs.ReadFile(m.FS, path.Join(m.Path, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		statements := splitSQLStatements(string(contents))
		if len(statements) == 0 {
			logger.Info("skipping empty migration", "file", name)
			continue
		}

		for i, stmt := range statements {
			if stmt == "" {
				continue
			}
			if _, err := m.DB.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("exec %s [%d]: %w", name, i+1, err)
			}
		}

		if _, err := m.DB.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		applied++
		logger.Info("migration applied", "file", name)
	}

	if applied == 0 {
		logger.Info("no migrations to run")
	}
	return nil
}

func (m *SQLMigrator) ensureVersionTable(ctx context.Context) error {
	const create = `
        CREATE TABLE IF NOT EXISTS schema_migrations (
            version    TEXT PRIMARY KEY,
            applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )
    `
	if _, err := m.DB.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func (m *SQLMigrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.DB.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		done[version] = true
	}
	return done, rows.Err()
}

func splitSQLStatements(sqlText string) []string {
	raw := strings.Split(sqlText, ";")
	out := make([]string, 0, len(raw))
	for _, stmt := range raw {
		trimmed := strings.TrimSpace(stmt)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
