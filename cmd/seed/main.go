package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver

	migrations "github.com/shelflab/platform/db"
	"github.com/shelflab/platform/internal/config"
	"github.com/shelflab/platform/internal/database"
	"github.com/shelflab/platform/internal/domain"
	"github.com/shelflab/platform/internal/domain/panel"
	"github.com/shelflab/platform/internal/domain/surveys"
	"github.com/shelflab/platform/internal/domain/users"
	"github.com/shelflab/platform/internal/logger"
	pgstorage "github.com/shelflab/platform/internal/storage/postgres"
	"github.com/shelflab/platform/internal/storage/sqlite"
)

// Seeds a demo researcher with a live snack-shelf survey and one heuristic
// panel run, so a fresh install has data to look at.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("development").Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr := logger.New(cfg.Env)

	ctx := context.Background()

	services, cleanup, err := buildServices(ctx, cfg, logr)
	if err != nil {
		logr.Error("failed to init services", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	owner, err := services.Users.Register(users.RegisterInput{
		Email:    "demo@shelflab.dev",
		Name:     "Demo Researcher",
		Password: "demo-password",
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailExists) {
			logr.Info("demo user already exists; nothing to do")
			return
		}
		logr.Error("failed to seed user", "err", err)
		os.Exit(1)
	}

	survey, err := services.Surveys.Create(owner.ID, surveys.Input{
		Name:               "Chocolate bar shelf",
		Category:           "confectionery",
		PriceLevels:        4,
		TasksPerRespondent: 8,
		Products: []surveys.ProductInput{
			{Name: "Dark 70%", Brand: "Cocoa Works", MinPrice: 249, MaxPrice: 449},
			{Name: "Milk Classic", Brand: "Cocoa Works", MinPrice: 199, MaxPrice: 349},
			{Name: "Sea Salt Caramel", Brand: "Ambrosia", MinPrice: 299, MaxPrice: 499},
			{Name: "Hazelnut Crunch", Brand: "Ambrosia", MinPrice: 279, MaxPrice: 459},
		},
	})
	if err != nil {
		logr.Error("failed to seed survey", "err", err)
		os.Exit(1)
	}

	if _, err := services.Surveys.UpdateStatus(survey.ID, owner.ID, surveys.StatusLive); err != nil {
		logr.Error("failed to set survey live", "err", err)
		os.Exit(1)
	}

	run, err := services.Panel.Launch(ctx, survey.ID, owner.ID, panel.LaunchInput{Respondents: 25})
	if err != nil {
		logr.Error("seed panel run failed", "err", err)
		os.Exit(1)
	}

	logr.Info("seed complete",
		"owner", owner.Email,
		"survey_id", survey.ID,
		"run_id", run.ID,
		"responses", run.Completed,
	)
}

// buildServices wires a domain container for the configured backend. The
// seed panel always uses the deterministic heuristic chooser so seeding
// never depends on external services.
func buildServices(ctx context.Context, cfg config.Config, logr *slog.Logger) (domain.Container, func(), error) {
	personas, err := panel.LoadPersonas(cfg.PersonasPath)
	if err != nil {
		return domain.Container{}, nil, fmt.Errorf("load personas: %w", err)
	}

	opts := domain.Options{
		SessionTTL:          cfg.SessionTTL,
		Chooser:             panel.NewHeuristicChooser(1),
		Personas:            personas,
		PanelModel:          "heuristic",
		PanelMaxConcurrency: cfg.PanelMaxConcurrency,
		Logger:              logr,
	}

	switch cfg.DataBackend {
	case "sqlite":
		handle, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return domain.Container{}, nil, fmt.Errorf("open sqlite: %w", err)
		}
		opts.UserRepo = sqlite.NewUserRepository(handle)
		opts.SurveyRepo = sqlite.NewSurveyRepository(handle)
		opts.ResponseRepo = sqlite.NewResponseRepository(handle)
		opts.PanelRunRepo = sqlite.NewPanelRunRepository(handle)
		return domain.New(opts), func() { handle.Close() }, nil
	case "postgres":
		conn, err := database.Connect(ctx, database.Options{
			Driver:          cfg.DatabaseDriver,
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			Logger:          logr,
		})
		if err != nil {
			return domain.Container{}, nil, err
		}

		migrator := database.NewSQLMigrator(conn.DB, migrations.Migrations(), ".", logr)
		if err := conn.RunMigrations(ctx, migrator); err != nil {
			conn.Close()
			return domain.Container{}, nil, fmt.Errorf("migrations failed: %w", err)
		}

		sqlDB := conn.DB
		opts.UserRepo = pgstorage.NewUserRepository(sqlDB)
		opts.SurveyRepo = pgstorage.NewSurveyRepository(sqlDB)
		opts.ResponseRepo = pgstorage.NewResponseRepository(sqlDB)
		opts.PanelRunRepo = pgstorage.NewPanelRunRepository(sqlDB)
		return domain.New(opts), func() { conn.Close() }, nil
	default:
		return domain.Container{}, nil, fmt.Errorf("seed command requires DATA_BACKEND=postgres or sqlite, got %q", cfg.DataBackend)
	}
}
