package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/forgo/lending/internal/model"
)

// BookStore defines the interface for book storage.
// FindByID returns nil, nil when the book does not exist.
type BookStore interface {
	FindByID(ctx context.Context, id string) (*model.Book, error)
	Save(ctx context.Context, book *model.Book) error
}

// ReservationStore defines the interface for reservation storage
type ReservationStore interface {
	ExistsByUserAndBook(ctx context.Context, userID, bookID string) (bool, error)
	Save(ctx context.Context, reservation *model.Reservation) error
	Delete(ctx context.Context, userID, bookID string) error
	FindByUser(ctx context.Context, userID string) ([]*model.Reservation, error)
	FindByBook(ctx context.Context, bookID string) ([]*model.Reservation, error)
}

// ReservationService handles reservation business logic
type ReservationService struct {
	books        BookStore
	reservations ReservationStore
	waitlist     *WaitingList
	publisher    EventPublisher
	logger       *slog.Logger
	locks        *keyedMutex
}

// ReservationServiceConfig holds configuration for the reservation service
type ReservationServiceConfig struct {
	Books        BookStore
	Reservations ReservationStore
	Publisher    EventPublisher // optional
	Logger       *slog.Logger   // optional, defaults to slog.Default()
}

// NewReservationService creates a new reservation service with an empty
// waiting list
func NewReservationService(cfg ReservationServiceConfig) *ReservationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReservationService{
		books:        cfg.Books,
		reservations: cfg.Reservations,
		waitlist:     NewWaitingList(),
		publisher:    cfg.Publisher,
		logger:       logger,
		locks:        newKeyedMutex(),
	}
}

// Reserve reserves a copy of a book for a user
func (s *ReservationService) Reserve(ctx context.Context, userID, bookID string) error {
	_, err := s.reserve(ctx, userID, bookID, false)
	return err
}

// ReservePriority reserves a copy of a book for a user, or queues the user
// on the book's waiting list when no copy is free. waitlisted reports which
// one happened, decided under the book's lock.
func (s *ReservationService) ReservePriority(ctx context.Context, userID, bookID string) (waitlisted bool, err error) {
	return s.reserve(ctx, userID, bookID, true)
}

func (s *ReservationService) reserve(ctx context.Context, userID, bookID string, priority bool) (waitlisted bool, err error) {
	unlock := s.locks.Lock(bookID)
	defer unlock()

	book, err := s.findBook(ctx, bookID)
	if err != nil {
		return false, err
	}

	exists, err := s.reservations.ExistsByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return false, fmt.Errorf("check reservation: %w", err)
	}
	if exists {
		return false, ErrAlreadyReserved
	}

	switch {
	case book.HasAvailableCopies():
		if err := s.reservations.Save(ctx, model.NewReservation(userID, bookID)); err != nil {
			return false, fmt.Errorf("save reservation: %w", err)
		}
		book.CopiesAvailable--
		if err := s.books.Save(ctx, book); err != nil {
			return false, fmt.Errorf("save book: %w", err)
		}
		s.publish(ctx, model.EventReservationCreated, userID, book)

	case priority:
		s.waitlist.Enqueue(bookID, userID)
		if err := s.reservations.Save(ctx, model.NewReservation(userID, bookID)); err != nil {
			s.waitlist.Remove(bookID, userID)
			return false, fmt.Errorf("save reservation: %w", err)
		}
		s.publish(ctx, model.EventReservationWaitlisted, userID, book)
		return true, nil

	default:
		return false, ErrNoCopiesAvailable
	}

	return false, nil
}

// Cancel cancels a user's reservation. The freed copy goes to the first
// waiting priority user when the book had no free copies; otherwise it is
// returned to the shelf.
func (s *ReservationService) Cancel(ctx context.Context, userID, bookID string) error {
	unlock := s.locks.Lock(bookID)
	defer unlock()

	exists, err := s.reservations.ExistsByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return fmt.Errorf("check reservation: %w", err)
	}
	if !exists {
		return ErrReservationNotFound
	}

	book, err := s.findBook(ctx, bookID)
	if err != nil {
		return err
	}

	hadAvailableCopies := book.HasAvailableCopies()

	if err := s.reservations.Delete(ctx, userID, bookID); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}

	// A waiting user holds no copy, so leaving the queue frees nothing.
	if s.waitlist.Remove(bookID, userID) {
		s.publish(ctx, model.EventReservationCancelled, userID, book)
		return nil
	}

	if !hadAvailableCopies {
		if next, ok := s.waitlist.Dequeue(bookID); ok {
			s.logger.Info("waiting list promotion",
				"book_id", bookID,
				"from_user_id", userID,
				"to_user_id", next,
			)
			s.publish(ctx, model.EventReservationCancelled, userID, book)
			s.publish(ctx, model.EventReservationPromoted, next, book)
			return nil
		}
	}

	book.CopiesAvailable++
	if err := s.books.Save(ctx, book); err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	s.publish(ctx, model.EventReservationCancelled, userID, book)

	return nil
}

// ListReservations returns every reservation held by a user
func (s *ReservationService) ListReservations(ctx context.Context, userID string) ([]*model.Reservation, error) {
	reservations, err := s.reservations.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find reservations: %w", err)
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	return reservations, nil
}

// ListReservationsForBook returns every reservation on a book
func (s *ReservationService) ListReservationsForBook(ctx context.Context, bookID string) ([]*model.Reservation, error) {
	reservations, err := s.reservations.FindByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("find reservations: %w", err)
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	return reservations, nil
}

// WaitingList returns the users queued for a book, head first
func (s *ReservationService) WaitingList(bookID string) *model.WaitingListView {
	return &model.WaitingListView{
		BookID:  bookID,
		UserIDs: append([]string{}, s.waitlist.Snapshot(bookID)...),
	}
}

// GetBook retrieves a book
func (s *ReservationService) GetBook(ctx context.Context, bookID string) (*model.Book, error) {
	return s.findBook(ctx, bookID)
}

func (s *ReservationService) findBook(ctx context.Context, bookID string) (*model.Book, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("find book: %w", err)
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

func (s *ReservationService) publish(ctx context.Context, eventType model.ReservationEventType, userID string, book *model.Book) {
	if s.publisher == nil {
		return
	}
	event := model.NewReservationEvent(eventType, userID, book)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish reservation event",
			"type", event.Type,
			"book_id", event.BookID,
			"user_id", event.UserID,
			"error", err,
		)
	}
}

// keyedMutex serializes work per key. Entries are reference counted and
// removed when the last holder unlocks.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the lock for key and returns its release func
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
