// Package fixtures provides test data factories for store and API tests.
//
// Factories write through the store interfaces, so the same fixtures work
// against every backend.
//
// Usage:
//
//	f := fixtures.New(books, reservations)
//	book := f.CreateBook(t, fixtures.WithCopies(0))
//	f.CreateReservation(t, "nebojsa", book)
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/lending/internal/model"
	"github.com/forgo/lending/internal/service"
)

// Factory creates test entities in the stores
type Factory struct {
	books        service.BookStore
	reservations service.ReservationStore
}

// New creates a new fixture factory
func New(books service.BookStore, reservations service.ReservationStore) *Factory {
	return &Factory{books: books, reservations: reservations}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// Book Fixtures
// ============================================================================

// BookOpts customizes book creation
type BookOpts struct {
	ID     string
	Title  string
	Copies int
}

// WithCopies sets the number of available copies
func WithCopies(n int) func(*BookOpts) {
	return func(o *BookOpts) { o.Copies = n }
}

// WithBookID sets the book ID
func WithBookID(id string) func(*BookOpts) {
	return func(o *BookOpts) { o.ID = id }
}

// CreateBook saves a book with optional customizations. Defaults to ten copies.
func (f *Factory) CreateBook(t *testing.T, opts ...func(*BookOpts)) *model.Book {
	t.Helper()

	id := randomID()
	o := &BookOpts{
		ID:     id,
		Title:  fmt.Sprintf("Book %s", id),
		Copies: 10,
	}
	for _, fn := range opts {
		fn(o)
	}

	book := &model.Book{ID: o.ID, Title: o.Title, CopiesAvailable: o.Copies}
	if err := f.books.Save(ctx(t), book); err != nil {
		t.Fatalf("fixtures: failed to create book: %v", err)
	}
	return book
}

// ============================================================================
// Reservation Fixtures
// ============================================================================

// CreateReservation stores a reservation directly, bypassing copy accounting
func (f *Factory) CreateReservation(t *testing.T, userID string, book *model.Book) *model.Reservation {
	t.Helper()

	reservation := model.NewReservation(userID, book.ID)
	if err := f.reservations.Save(ctx(t), reservation); err != nil {
		t.Fatalf("fixtures: failed to create reservation: %v", err)
	}
	return reservation
}

// UserID returns a unique user ID
func UserID() string {
	return "user_" + randomID()
}
