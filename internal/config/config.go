package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultPort          = "8080"
	defaultDatabaseURL   = "equiplend.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTAudience   = "authenticated"
	defaultStorageDriver = "local"
	defaultUploadDir     = "./uploads"
	defaultStaticURLBase = "/static/uploads"
	defaultStatsCacheTTL = "60s"
	defaultDevTokenTTL   = "24h"
)

const (
	StorageLocal  = "local"
	StorageGDrive = "gdrive"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	JWTSecret   string
	JWTAudience string
	DevTokenTTL time.Duration

	// AdminEmails are provisioned as ADMIN on first login.
	AdminEmails map[string]bool

	CORSAllowedOrigins []string

	StorageDriver         string
	UploadDir             string
	StaticURLBase         string
	GDriveFolderID        string
	GDriveCredentialsPath string
	GDriveCredentialsJSON string

	RedisURL      string
	StatsCacheTTL time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("AUTH_JWT_SECRET", defaultJWTSecret))
	cfg.JWTAudience = strings.TrimSpace(getEnv("AUTH_JWT_AUDIENCE", defaultJWTAudience))
	cfg.AdminEmails = parseEmailSet(os.Getenv("ADMIN_EMAILS"))
	cfg.CORSAllowedOrigins = parseList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", defaultStorageDriver)))
	cfg.UploadDir = strings.TrimSpace(getEnv("UPLOAD_DIR", defaultUploadDir))
	cfg.StaticURLBase = strings.TrimRight(strings.TrimSpace(getEnv("STATIC_URL_BASE", defaultStaticURLBase)), "/")
	cfg.GDriveFolderID = strings.TrimSpace(os.Getenv("GDRIVE_FOLDER_ID"))
	cfg.GDriveCredentialsPath = strings.TrimSpace(os.Getenv("GDRIVE_CREDENTIALS_PATH"))
	cfg.GDriveCredentialsJSON = strings.TrimSpace(os.Getenv("GDRIVE_CREDENTIALS_JSON"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	var err error
	cfg.StatsCacheTTL, err = parseDurationEnv("STATS_CACHE_TTL", defaultStatsCacheTTL)
	if err != nil {
		return nil, err
	}
	cfg.DevTokenTTL, err = parseDurationEnv("DEV_TOKEN_TTL", defaultDevTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s storage=%s redis=%t admins=%d", cfg.AppEnv, cfg.StorageDriver, cfg.RedisURL != "", len(cfg.AdminEmails))

	return cfg, nil
}

// IsAdminEmail reports whether email is on the ADMIN allow-list.
func (c *Config) IsAdminEmail(email string) bool {
	return c.AdminEmails[strings.ToLower(strings.TrimSpace(email))]
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.StatsCacheTTL < 0 {
		return fmt.Errorf("STATS_CACHE_TTL must be >= 0")
	}
	switch cfg.StorageDriver {
	case StorageLocal:
		if cfg.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR must not be empty for local storage")
		}
	case StorageGDrive:
		if cfg.GDriveFolderID == "" {
			return fmt.Errorf("GDRIVE_FOLDER_ID is required for gdrive storage")
		}
		if cfg.GDriveCredentialsPath == "" && cfg.GDriveCredentialsJSON == "" {
			return fmt.Errorf("GDRIVE_CREDENTIALS_PATH or GDRIVE_CREDENTIALS_JSON is required for gdrive storage")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, gdrive")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release AUTH_JWT_SECRET must be set and not default")
		}
		if !isPostgresDSN(cfg.DatabaseURL) {
			return fmt.Errorf("in prod/release DATABASE_URL must point at PostgreSQL")
		}
	}

	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseEmailSet(raw string) map[string]bool {
	set := make(map[string]bool)
	for _, e := range parseList(raw) {
		set[strings.ToLower(e)] = true
	}
	return set
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
