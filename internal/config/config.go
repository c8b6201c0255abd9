package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendSurreal  = "surreal"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Rabbit    RabbitConfig
	RateLimit RateLimitConfig
	LogLevel  slog.Level
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	// TrustProxy keys clients by the X-Forwarded-For hop appended by the
	// reverse proxy in front of the server instead of the socket address.
	TrustProxy bool
}

// StoreConfig selects and configures the book and reservation stores
type StoreConfig struct {
	Backend        string
	SQLitePath     string
	PostgresDSN    string
	PostgresDriver string
	BookCacheSize  int
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// RabbitConfig holds event publishing settings. An empty URL disables it.
type RabbitConfig struct {
	URL      string
	Exchange string
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// Load reads an optional .env file, then configuration from environment
// variables with sensible defaults. Variables already set in the
// environment win over the file.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv files. Missing files are skipped.
func LoadFiles(files ...string) (*Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			TrustProxy:     getBoolEnv("SERVER_TRUST_PROXY", false),
		},
		Store: StoreConfig{
			Backend:        getEnv("STORE_BACKEND", BackendMemory),
			SQLitePath:     getEnv("SQLITE_PATH", "data/lending.db"),
			PostgresDSN:    getEnv("POSTGRES_DSN", ""),
			PostgresDriver: getEnv("POSTGRES_DRIVER", "postgres"),
			BookCacheSize:  getIntEnv("BOOK_CACHE_SIZE", 0),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "lending"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Rabbit: RabbitConfig{
			URL:      getEnv("RABBIT_URL", ""),
			Exchange: getEnv("RABBIT_EXCHANGE", "lending_events"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 100),
			Burst:             getIntEnv("RATE_LIMIT_BURST", 20),
		},
		LogLevel: level,
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Store validation
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres backend"))
		}
		if c.Store.PostgresDriver != "postgres" && c.Store.PostgresDriver != "pgx" {
			errs = append(errs, fmt.Errorf("POSTGRES_DRIVER must be 'postgres' or 'pgx', got '%s'", c.Store.PostgresDriver))
		}
	case BackendSurreal:
		errs = append(errs, c.Database.validate()...)
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be one of memory, sqlite, postgres, surreal, got '%s'", c.Store.Backend))
	}
	if c.Store.BookCacheSize < 0 {
		errs = append(errs, errors.New("BOOK_CACHE_SIZE must not be negative"))
	}

	// Messaging validation
	if c.Rabbit.URL != "" && c.Rabbit.Exchange == "" {
		errs = append(errs, errors.New("RABBIT_EXCHANGE is required when RABBIT_URL is set"))
	}

	// Rate limit validation
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive"))
	}

	return errors.Join(errs...)
}

func (d DatabaseConfig) validate() []error {
	var missing []string
	if d.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if d.Port == "" {
		missing = append(missing, "DB_PORT")
	}
	if d.Namespace == "" {
		missing = append(missing, "DB_NAMESPACE")
	}
	if d.Database == "" {
		missing = append(missing, "DB_DATABASE")
	}
	if len(missing) > 0 {
		return []error{fmt.Errorf("surreal backend: missing required fields: %s", strings.Join(missing, ", "))}
	}
	return nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
