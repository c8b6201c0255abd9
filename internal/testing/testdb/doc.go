// Package testdb provides test database utilities for the lending API.
//
// # SQLite
//
// Each call returns a fresh in-memory database with migrations applied:
//
//	tdb := testdb.NewSQLite(t)
//	repo := repository.NewSQLReservationRepository(tdb.DB)
//
// # SurrealDB
//
// Each test gets an isolated namespace, removed on cleanup:
//
//	tdb := testdb.NewSurreal(t) // skipped unless TEST_SURREAL=1
//
// # Timeout Context
//
//	ctx := testdb.Ctx(t) // 10 second timeout
package testdb
