package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/forgo/lending/internal/model"
)

// MemoryBookRepository keeps books in process memory. Records are copied
// on the way in and out so callers never alias stored state.
type MemoryBookRepository struct {
	mu    sync.RWMutex
	books map[string]*model.Book
}

// NewMemoryBookRepository creates an empty in-memory book repository
func NewMemoryBookRepository() *MemoryBookRepository {
	return &MemoryBookRepository{books: make(map[string]*model.Book)}
}

// FindByID returns the book, or nil when it does not exist
func (r *MemoryBookRepository) FindByID(_ context.Context, id string) (*model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.books[id].Clone(), nil
}

// Save inserts or replaces a book
func (r *MemoryBookRepository) Save(_ context.Context, book *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.books[book.ID] = book.Clone()
	return nil
}

type reservationKey struct {
	userID string
	bookID string
}

// MemoryReservationRepository keeps reservations in insertion order
type MemoryReservationRepository struct {
	mu    sync.RWMutex
	order []reservationKey
	byKey map[reservationKey]*model.Reservation
	now   func() time.Time
}

// NewMemoryReservationRepository creates an empty in-memory reservation repository
func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{
		byKey: make(map[reservationKey]*model.Reservation),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ExistsByUserAndBook reports whether the user holds a reservation on the book
func (r *MemoryReservationRepository) ExistsByUserAndBook(_ context.Context, userID, bookID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byKey[reservationKey{userID, bookID}]
	return ok, nil
}

// Save stores a reservation. Saving an existing pair keeps the original
// record and its position.
func (r *MemoryReservationRepository) Save(_ context.Context, reservation *model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reservationKey{reservation.UserID, reservation.BookID}
	if _, ok := r.byKey[key]; ok {
		return nil
	}

	stored := reservation.Clone()
	if stored.CreatedOn.IsZero() {
		stored.CreatedOn = r.now()
	}
	reservation.CreatedOn = stored.CreatedOn

	r.byKey[key] = stored
	r.order = append(r.order, key)
	return nil
}

// Delete removes a reservation; deleting a missing pair is a no-op
func (r *MemoryReservationRepository) Delete(_ context.Context, userID, bookID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reservationKey{userID, bookID}
	if _, ok := r.byKey[key]; !ok {
		return nil
	}
	delete(r.byKey, key)
	r.order = slices.DeleteFunc(r.order, func(k reservationKey) bool { return k == key })
	return nil
}

// FindByUser returns the user's reservations in insertion order
func (r *MemoryReservationRepository) FindByUser(_ context.Context, userID string) ([]*model.Reservation, error) {
	return r.find(func(k reservationKey) bool { return k.userID == userID }), nil
}

// FindByBook returns the book's reservations in insertion order
func (r *MemoryReservationRepository) FindByBook(_ context.Context, bookID string) ([]*model.Reservation, error) {
	return r.find(func(k reservationKey) bool { return k.bookID == bookID }), nil
}

func (r *MemoryReservationRepository) find(match func(reservationKey) bool) []*model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Reservation, 0)
	for _, k := range r.order {
		if match(k) {
			out = append(out, r.byKey[k].Clone())
		}
	}
	return out
}
