// Package testdb provides isolated databases for store and end-to-end tests.
//
// SQLite databases are created in memory and need nothing installed.
// PostgreSQL databases use a throwaway schema in TEST_POSTGRES_DSN and are
// skipped when it is unset.
// SurrealDB databases require a running server and are only created when
// TEST_SURREAL=1; otherwise the test is skipped.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.NewSQLite(t)
//	    books := repository.NewSQLBookRepository(tdb.DB)
//	}
package testdb

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/forgo/lending/internal/database"
	"github.com/forgo/lending/internal/repository"
)

var (
	// counterMu protects the namespace counter
	counterMu sync.Mutex
	counter   int64
)

// SQLTestDB is a migrated, in-memory SQLite database
type SQLTestDB struct {
	DB *sqlx.DB
}

// NewSQLite creates an in-memory SQLite database with the schema applied.
// It is closed automatically when the test ends.
func NewSQLite(t *testing.T) *SQLTestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.OpenSQL(ctx, database.SQLConfig{
		Driver: database.DriverSQLite,
		DSN:    ":memory:",
	})
	if err != nil {
		t.Fatalf("testdb: failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := repository.Migrate(ctx, db); err != nil {
		t.Fatalf("testdb: migration failed: %v", err)
	}

	return &SQLTestDB{DB: db}
}

// NewPostgres creates a fresh schema in the database named by
// TEST_POSTGRES_DSN (a postgres:// URL) and returns a pool whose
// search_path points at it. The schema is dropped when the test ends.
func NewPostgres(t *testing.T) *SQLTestDB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("testdb: set TEST_POSTGRES_DSN to run against PostgreSQL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := database.OpenSQL(ctx, database.SQLConfig{Driver: database.DriverPgx, DSN: dsn})
	if err != nil {
		t.Fatalf("testdb: failed to open postgres: %v", err)
	}
	t.Cleanup(func() { _ = admin.Close() })

	schema := uniqueNamespace()
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("testdb: create schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = admin.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := database.OpenSQL(ctx, database.SQLConfig{
		Driver: database.DriverPostgres,
		DSN:    dsn + sep + "search_path=" + schema,
	})
	if err != nil {
		t.Fatalf("testdb: failed to open postgres schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := repository.Migrate(ctx, db); err != nil {
		t.Fatalf("testdb: migration failed: %v", err)
	}

	return &SQLTestDB{DB: db}
}

// SurrealTestDB provides an isolated SurrealDB namespace
type SurrealTestDB struct {
	DB        database.Database
	Namespace string
}

// getSurrealConfig returns database config from environment or defaults
func getSurrealConfig() database.Config {
	return database.Config{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "8000"),
		User:     envOr("TEST_DB_USER", "root"),
		Password: envOr("TEST_DB_PASSWORD", "root"),
		Database: "test",
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// uniqueNamespace generates a unique namespace for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// NewSurreal connects to SurrealDB in a fresh namespace with the schema
// applied. The namespace is removed when the test ends.
func NewSurreal(t *testing.T) *SurrealTestDB {
	t.Helper()

	if os.Getenv("TEST_SURREAL") != "1" {
		t.Skip("testdb: set TEST_SURREAL=1 to run against SurrealDB")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := getSurrealConfig()
	cfg.Namespace = uniqueNamespace()

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	tdb := &SurrealTestDB{DB: db, Namespace: cfg.Namespace}
	t.Cleanup(tdb.close)

	if err := repository.MigrateSurreal(ctx, db); err != nil {
		t.Fatalf("testdb: migration failed: %v", err)
	}

	return tdb
}

func (tdb *SurrealTestDB) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ignore errors on cleanup
	_ = tdb.DB.Execute(ctx, fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace), nil)
	_ = tdb.DB.Close()
}

// Ctx returns a context with a reasonable timeout for test operations.
func Ctx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}
