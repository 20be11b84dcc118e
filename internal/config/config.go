package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Env               string
	HTTPPort          int
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration

	DataBackend string

	DatabaseDriver    string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	SQLitePath string

	SessionTTL time.Duration

	PanelBackend        string
	GeminiAPIKey        string
	GeminiModel         string
	PanelMaxConcurrency int
	PersonasPath        string

	MediaDir       string
	MaxUploadBytes int64
}

const (
	defaultEnv               = "development"
	defaultHTTPPort          = 8080
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultDataBackend = "memory"

	defaultDatabaseDriver    = "pgx"
	defaultDBMaxOpenConns    = 10
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = time.Hour
	defaultDBConnMaxIdleTime = 30 * time.Minute

	defaultSQLitePath = "shelflab.db"

	defaultSessionTTL = 24 * time.Hour

	defaultPanelBackend        = "heuristic"
	defaultPanelMaxConcurrency = 4

	defaultMediaDir       = "media"
	defaultMaxUploadBytes = 5 << 20
)

// Load reads configuration values from the environment, applying defaults where necessary.
func Load() (Config, error) {
	cfg := Config{
		Env:               getEnv("APP_ENV", defaultEnv),
		HTTPPort:          getInt("HTTP_PORT", defaultHTTPPort),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		ReadHeaderTimeout: getDuration("READ_HEADER_TIMEOUT", defaultReadHeaderTimeout),

		DataBackend: getEnv("DATA_BACKEND", defaultDataBackend),

		DatabaseDriver:    getEnv("DATABASE_DRIVER", defaultDatabaseDriver),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", defaultDBMaxOpenConns),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", defaultDBMaxIdleConns),
		DBConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", defaultDBConnMaxLifetime),
		DBConnMaxIdleTime: getDuration("DB_CONN_MAX_IDLE_TIME", defaultDBConnMaxIdleTime),

		SQLitePath: getEnv("SQLITE_PATH", defaultSQLitePath),

		SessionTTL: getDuration("SESSION_TTL", defaultSessionTTL),

		PanelBackend:        getEnv("PANEL_BACKEND", defaultPanelBackend),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         os.Getenv("GEMINI_MODEL"),
		PanelMaxConcurrency: getInt("PANEL_MAX_CONCURRENCY", defaultPanelMaxConcurrency),
		PersonasPath:        os.Getenv("PERSONAS_PATH"),

		MediaDir:       getEnv("MEDIA_DIR", defaultMediaDir),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
	}

	switch cfg.DataBackend {
	case "memory", "sqlite":
		// no-op
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when DATA_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown DATA_BACKEND value: %s", cfg.DataBackend)
	}

	switch cfg.PanelBackend {
	case "heuristic":
		// no-op
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return Config{}, fmt.Errorf("GEMINI_API_KEY is required when PANEL_BACKEND=gemini")
		}
	default:
		return Config{}, fmt.Errorf("unknown PANEL_BACKEND value: %s", cfg.PanelBackend)
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
