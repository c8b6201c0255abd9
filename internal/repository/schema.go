package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/forgo/lending/internal/database"
)

const (
	tableBooks        = "books"
	tableReservations = "reservations"

	colID              = "id"
	colTitle           = "title"
	colCopiesAvailable = "copies_available"
	colUserID          = "user_id"
	colBookID          = "book_id"
	colCreatedOn       = "created_on"
)

var sqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL DEFAULT '',
		copies_available INTEGER NOT NULL DEFAULT 0 CHECK (copies_available >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		user_id    TEXT NOT NULL,
		book_id    TEXT NOT NULL,
		created_on TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, book_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_user ON reservations (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_book ON reservations (book_id)`,
}

// Migrate creates the books and reservations tables when missing
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range sqlSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

var surrealSchema = []string{
	`DEFINE TABLE IF NOT EXISTS book SCHEMAFULL`,
	`DEFINE FIELD IF NOT EXISTS book_id ON book TYPE string`,
	`DEFINE FIELD IF NOT EXISTS title ON book TYPE string`,
	`DEFINE FIELD IF NOT EXISTS copies_available ON book TYPE int ASSERT $value >= 0`,
	`DEFINE TABLE IF NOT EXISTS reservation SCHEMAFULL`,
	`DEFINE FIELD IF NOT EXISTS user_id ON reservation TYPE string`,
	`DEFINE FIELD IF NOT EXISTS book_id ON reservation TYPE string`,
	`DEFINE FIELD IF NOT EXISTS created_on ON reservation TYPE datetime`,
	`DEFINE INDEX IF NOT EXISTS reservation_user ON reservation FIELDS user_id`,
	`DEFINE INDEX IF NOT EXISTS reservation_book ON reservation FIELDS book_id`,
}

// MigrateSurreal defines the book and reservation tables in one transaction
func MigrateSurreal(ctx context.Context, db database.Database) error {
	batch := database.NewAtomicBatch()
	for _, stmt := range surrealSchema {
		batch.Add(stmt, nil)
	}
	if err := batch.Execute(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
