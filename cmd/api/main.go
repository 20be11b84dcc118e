package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver

	migrations "github.com/shelflab/platform/db"
	"github.com/shelflab/platform/internal/config"
	"github.com/shelflab/platform/internal/database"
	"github.com/shelflab/platform/internal/domain"
	"github.com/shelflab/platform/internal/domain/panel"
	"github.com/shelflab/platform/internal/httpapi"
	"github.com/shelflab/platform/internal/logger"
	"github.com/shelflab/platform/internal/server"
	"github.com/shelflab/platform/internal/storage/memory"
	pgstorage "github.com/shelflab/platform/internal/storage/postgres"
	"github.com/shelflab/platform/internal/storage/sqlite"
	"github.com/shelflab/platform/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr := logger.New(cfg.Env)

	baseCtx := context.Background()

	var db *database.DB
	if cfg.DataBackend == "postgres" {
		db, err = connectPostgres(baseCtx, cfg, logr)
		if err != nil {
			logr.Error("failed to connect database", "err", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logr.Error("error closing database", "err", cerr)
			}
		}()
	}

	domainContainer, err := buildDomainContainer(baseCtx, cfg, logr, db)
	if err != nil {
		logr.Error("failed to init domain container", "err", err)
		os.Exit(1)
	}

	uploads, err := upload.NewStore(cfg.MediaDir, cfg.MaxUploadBytes)
	if err != nil {
		logr.Error("failed to init media store", "err", err)
		os.Exit(1)
	}

	srv := server.New(cfg, logr)

	httpapi.Register(srv.Mux(), logr, domainContainer, uploads)

	go func() {
		if err := srv.Run(); err != nil {
			logr.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown failed", "err", err)
		os.Exit(1)
	}
}

func connectPostgres(ctx context.Context, cfg config.Config, logr *slog.Logger) (*database.DB, error) {
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
		return nil, err
	}

	migrator := database.NewSQLMigrator(conn.DB, migrations.Migrations(), ".", logr)
	if err := conn.RunMigrations(ctx, migrator); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	return conn, nil
}

func buildDomainContainer(ctx context.Context, cfg config.Config, logr *slog.Logger, db *database.DB) (domain.Container, error) {
	personas, err := panel.LoadPersonas(cfg.PersonasPath)
	if err != nil {
		return domain.Container{}, fmt.Errorf("load personas: %w", err)
	}

	chooser, model, err := buildChooser(ctx, cfg)
	if err != nil {
		return domain.Container{}, err
	}
	logr.Info("panel backend ready", "backend", cfg.PanelBackend, "model", model)

	opts := domain.Options{
		SessionTTL:          cfg.SessionTTL,
		Chooser:             chooser,
		Personas:            personas,
		PanelModel:          model,
		PanelMaxConcurrency: cfg.PanelMaxConcurrency,
		Logger:              logr,
	}

	switch cfg.DataBackend {
	case "memory":
		logr.Info("using in-memory repositories (DATA_BACKEND=memory)")
		opts.UserRepo = memory.NewUserRepository()
		opts.SurveyRepo = memory.NewSurveyRepository()
		opts.ResponseRepo = memory.NewResponseRepository()
		opts.PanelRunRepo = memory.NewPanelRunRepository()
	case "sqlite":
		logr.Info("using sqlite repositories (DATA_BACKEND=sqlite)", "path", cfg.SQLitePath)
		handle, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return domain.Container{}, fmt.Errorf("open sqlite: %w", err)
		}
		opts.UserRepo = sqlite.NewUserRepository(handle)
		opts.SurveyRepo = sqlite.NewSurveyRepository(handle)
		opts.ResponseRepo = sqlite.NewResponseRepository(handle)
		opts.PanelRunRepo = sqlite.NewPanelRunRepository(handle)
	case "postgres":
		if db == nil {
			return domain.Container{}, fmt.Errorf("postgres backend requires database connection")
		}
		logr.Info("using postgres repositories (DATA_BACKEND=postgres)")
		sqlDB := db.DB
		opts.UserRepo = pgstorage.NewUserRepository(sqlDB)
		opts.SurveyRepo = pgstorage.NewSurveyRepository(sqlDB)
		opts.ResponseRepo = pgstorage.NewResponseRepository(sqlDB)
		opts.PanelRunRepo = pgstorage.NewPanelRunRepository(sqlDB)
	default:
		return domain.Container{}, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}

	return domain.New(opts), nil
}

func buildChooser(ctx context.Context, cfg config.Config) (panel.Chooser, string, error) {
	switch cfg.PanelBackend {
	case "heuristic":
		return panel.NewHeuristicChooser(time.Now().UnixNano()), "heuristic", nil
	case "gemini":
		chooser, err := panel.NewGeminiChooser(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, "", fmt.Errorf("init gemini chooser: %w", err)
		}
		return chooser, chooser.Model(), nil
	default:
		return nil, "", fmt.Errorf("unsupported panel backend: %s", cfg.PanelBackend)
	}
}
