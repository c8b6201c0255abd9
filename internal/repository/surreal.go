package repository

import (
	"context"
	"errors"

	"github.com/forgo/lending/internal/database"
	"github.com/forgo/lending/internal/model"
)

// SurrealBookRepository stores books in SurrealDB as book:<id> records
type SurrealBookRepository struct {
	db database.Database
}

// NewSurrealBookRepository creates a new SurrealDB book repository
func NewSurrealBookRepository(db database.Database) *SurrealBookRepository {
	return &SurrealBookRepository{db: db}
}

// FindByID returns the book, or nil when it does not exist
func (r *SurrealBookRepository) FindByID(ctx context.Context, id string) (*model.Book, error) {
	// Direct record access - more efficient than WHERE id =
	query := `SELECT book_id, title, copies_available FROM type::thing("book", $id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	return &model.Book{
		ID:              getString(data, "book_id"),
		Title:           getString(data, "title"),
		CopiesAvailable: getInt(data, "copies_available"),
	}, nil
}

// Save inserts or replaces a book
func (r *SurrealBookRepository) Save(ctx context.Context, book *model.Book) error {
	query := `
		UPSERT type::thing("book", $id) SET
			book_id = $id,
			title = $title,
			copies_available = $copies_available
	`
	vars := map[string]interface{}{
		"id":               book.ID,
		"title":            book.Title,
		"copies_available": book.CopiesAvailable,
	}

	return r.db.Execute(ctx, query, vars)
}

// SurrealReservationRepository stores reservations in SurrealDB keyed by
// reservation:[user_id, book_id]
type SurrealReservationRepository struct {
	db database.Database
}

// NewSurrealReservationRepository creates a new SurrealDB reservation repository
func NewSurrealReservationRepository(db database.Database) *SurrealReservationRepository {
	return &SurrealReservationRepository{db: db}
}

// ExistsByUserAndBook reports whether the user holds a reservation on the book
func (r *SurrealReservationRepository) ExistsByUserAndBook(ctx context.Context, userID, bookID string) (bool, error) {
	query := `SELECT count() AS count FROM type::thing("reservation", [$user_id, $book_id]) GROUP ALL`
	vars := map[string]interface{}{"user_id": userID, "book_id": bookID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return false, err
	}
	return extractCount(result) > 0, nil
}

// Save stores a reservation; an existing pair keeps its created_on
func (r *SurrealReservationRepository) Save(ctx context.Context, reservation *model.Reservation) error {
	query := `
		UPSERT type::thing("reservation", [$user_id, $book_id]) SET
			user_id = $user_id,
			book_id = $book_id,
			created_on = created_on OR time::now()
		RETURN created_on
	`
	vars := map[string]interface{}{
		"user_id": reservation.UserID,
		"book_id": reservation.BookID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}
	if records := extractQueryResults(result); len(records) > 0 {
		reservation.CreatedOn = getTime(records[0], "created_on")
	}
	return nil
}

// Delete removes a reservation; deleting a missing pair is a no-op
func (r *SurrealReservationRepository) Delete(ctx context.Context, userID, bookID string) error {
	query := `DELETE type::thing("reservation", [$user_id, $book_id])`
	vars := map[string]interface{}{"user_id": userID, "book_id": bookID}

	return r.db.Execute(ctx, query, vars)
}

// FindByUser returns the user's reservations, oldest first
func (r *SurrealReservationRepository) FindByUser(ctx context.Context, userID string) ([]*model.Reservation, error) {
	query := `SELECT user_id, book_id, created_on FROM reservation WHERE user_id = $user_id ORDER BY created_on`
	return r.find(ctx, query, map[string]interface{}{"user_id": userID})
}

// FindByBook returns the book's reservations, oldest first
func (r *SurrealReservationRepository) FindByBook(ctx context.Context, bookID string) ([]*model.Reservation, error) {
	query := `SELECT user_id, book_id, created_on FROM reservation WHERE book_id = $book_id ORDER BY created_on`
	return r.find(ctx, query, map[string]interface{}{"book_id": bookID})
}

func (r *SurrealReservationRepository) find(ctx context.Context, query string, vars map[string]interface{}) ([]*model.Reservation, error) {
	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records := extractQueryResults(result)
	reservations := make([]*model.Reservation, 0, len(records))
	for _, data := range records {
		reservations = append(reservations, &model.Reservation{
			UserID:    getString(data, "user_id"),
			BookID:    getString(data, "book_id"),
			CreatedOn: getTime(data, "created_on"),
		})
	}
	return reservations, nil
}
