package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jmoiron/sqlx"

	"github.com/forgo/lending/internal/database"
	"github.com/forgo/lending/internal/model"
)

// dialectFor maps a database/sql driver name to its goqu dialect
func dialectFor(driverName string) goqu.DialectWrapper {
	switch driverName {
	case database.DriverSQLite:
		return goqu.Dialect("sqlite3")
	default:
		return goqu.Dialect("postgres")
	}
}

// SQLBookRepository stores books in SQLite or PostgreSQL
type SQLBookRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

// NewSQLBookRepository creates a book repository over an open sqlx pool
func NewSQLBookRepository(db *sqlx.DB) *SQLBookRepository {
	return &SQLBookRepository{db: db, dialect: dialectFor(db.DriverName())}
}

// FindByID returns the book, or nil when it does not exist
func (r *SQLBookRepository) FindByID(ctx context.Context, id string) (*model.Book, error) {
	query, args, err := r.dialect.
		From(tableBooks).
		Select(colID, colTitle, colCopiesAvailable).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

// Save inserts or replaces a book
func (r *SQLBookRepository) Save(ctx context.Context, book *model.Book) error {
	query, args, err := r.dialect.
		Insert(tableBooks).
		Rows(goqu.Record{colID: book.ID, colTitle: book.Title, colCopiesAvailable: book.CopiesAvailable}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colTitle:           goqu.I("excluded." + colTitle),
			colCopiesAvailable: goqu.I("excluded." + colCopiesAvailable),
		})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// SQLReservationRepository stores reservations in SQLite or PostgreSQL
type SQLReservationRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	now     func() time.Time
}

// NewSQLReservationRepository creates a reservation repository over an open sqlx pool
func NewSQLReservationRepository(db *sqlx.DB) *SQLReservationRepository {
	return &SQLReservationRepository{
		db:      db,
		dialect: dialectFor(db.DriverName()),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ExistsByUserAndBook reports whether the user holds a reservation on the book
func (r *SQLReservationRepository) ExistsByUserAndBook(ctx context.Context, userID, bookID string) (bool, error) {
	query, args, err := r.dialect.
		From(tableReservations).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.Ex{colUserID: userID, colBookID: bookID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Save stores a reservation; an existing pair is left untouched
func (r *SQLReservationRepository) Save(ctx context.Context, reservation *model.Reservation) error {
	createdOn := reservation.CreatedOn
	if createdOn.IsZero() {
		createdOn = r.now()
	}

	query, args, err := r.dialect.
		Insert(tableReservations).
		Rows(goqu.Record{
			colUserID:    reservation.UserID,
			colBookID:    reservation.BookID,
			colCreatedOn: createdOn,
		}).
		OnConflict(goqu.DoNothing()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	reservation.CreatedOn = createdOn
	return nil
}

// Delete removes a reservation; deleting a missing pair is a no-op
func (r *SQLReservationRepository) Delete(ctx context.Context, userID, bookID string) error {
	query, args, err := r.dialect.
		Delete(tableReservations).
		Where(goqu.Ex{colUserID: userID, colBookID: bookID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// FindByUser returns the user's reservations, oldest first
func (r *SQLReservationRepository) FindByUser(ctx context.Context, userID string) ([]*model.Reservation, error) {
	return r.find(ctx, goqu.Ex{colUserID: userID})
}

// FindByBook returns the book's reservations, oldest first
func (r *SQLReservationRepository) FindByBook(ctx context.Context, bookID string) ([]*model.Reservation, error) {
	return r.find(ctx, goqu.Ex{colBookID: bookID})
}

func (r *SQLReservationRepository) find(ctx context.Context, where goqu.Ex) ([]*model.Reservation, error) {
	query, args, err := r.dialect.
		From(tableReservations).
		Select(colUserID, colBookID, colCreatedOn).
		Where(where).
		Order(goqu.I(colCreatedOn).Asc(), goqu.I(colUserID).Asc(), goqu.I(colBookID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	reservations := make([]*model.Reservation, 0)
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, err
	}
	for _, res := range reservations {
		res.CreatedOn = res.CreatedOn.UTC()
	}
	return reservations, nil
}
