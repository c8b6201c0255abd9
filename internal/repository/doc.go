// Package repository implements the data access layer for the lending API.
//
// Every backend provides the BookStore and ReservationStore contracts
// defined by the service package:
//
//   - Memory: maps guarded by a RWMutex, reservations kept in insertion order
//   - SQL: SQLite or PostgreSQL through sqlx, queries built with goqu
//   - Surreal: SurrealQL over database.Database
//
// CachedBookRepository wraps any book store with an LRU cache.
//
// # Repository Pattern
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - FindByID returns nil, nil when the record does not exist
//   - Returned records never alias stored state
//
// # Schema
//
// Migrate creates the SQL tables; MigrateSurreal defines the SurrealDB
// tables inside one transaction.
//
// # Example Usage
//
//	db, err := database.OpenSQL(ctx, database.SQLConfig{Driver: "sqlite", DSN: "data/lending.db"})
//	if err := repository.Migrate(ctx, db); err != nil {
//	    return err
//	}
//	books := repository.NewSQLBookRepository(db)
package repository
