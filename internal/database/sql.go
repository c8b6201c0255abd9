package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"   // registers "postgres"
	_ "modernc.org/sqlite" // registers "sqlite"
)

// SQL driver names accepted by OpenSQL
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// SQLConfig holds connection settings for the SQL backends
type SQLConfig struct {
	Driver string
	DSN    string // file path or ":memory:" for sqlite

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

// OpenSQL opens and pings a pooled sqlx connection for the configured driver
func OpenSQL(ctx context.Context, cfg SQLConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return openSQLite(ctx, cfg)
	case DriverPostgres, DriverPgx:
		return openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", ErrConnection, cfg.Driver)
	}
}

func openSQLite(ctx context.Context, cfg SQLConfig) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: sqlite path is empty", ErrConnection)
	}
	if cfg.DSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create database directory: %v", ErrConnection, err)
		}
	}

	db, err := sqlx.Open(DriverSQLite, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	for _, pragma := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrConnection, pragma, err)
		}
	}

	return db, nil
}

func openPostgres(ctx context.Context, cfg SQLConfig) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: postgres DSN is empty", ErrConnection)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	db.SetMaxOpenConns(withDefault(cfg.MaxOpenConns, 50))
	db.SetMaxIdleConns(withDefault(cfg.MaxIdleConns, 10))
	db.SetConnMaxLifetime(withDefault(cfg.ConnMaxLifetime, time.Hour))
	db.SetConnMaxIdleTime(withDefault(cfg.ConnMaxIdleTime, 5*time.Minute))

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return db, nil
}

func withDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}
