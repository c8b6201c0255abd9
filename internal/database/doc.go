// Package database provides database connectivity for the lending API.
//
// Two families of backends are supported:
//
//   - SQL (SQLite through modernc.org/sqlite, PostgreSQL through lib/pq or
//     pgx) opened with OpenSQL as a pooled *sqlx.DB
//   - SurrealDB behind the Database interface
//
// # Database Interface
//
//	type Database interface {
//	    Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
//	    QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
//	    Execute(ctx context.Context, query string, vars map[string]interface{}) error
//	    Close() error
//	}
//
// # Batches
//
// AtomicBatch wraps several SurrealQL statements in one transaction
// block. Queries accumulate and execute together; there is no isolation
// between Add() calls.
//
// # Error Types
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
package database
