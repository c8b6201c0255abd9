// Package service implements the business logic layer for the lending API.
//
// The service package holds the reservation state machine: reserving copies,
// queueing priority users on a per-book waiting list, and handing a freed
// copy to the first waiting user on cancel.
//
// # Service Pattern
//
//   - Constructor function (NewXxxService) accepts a config struct with store dependencies
//   - Services define the store interfaces they consume (BookStore, ReservationStore)
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Context is passed through to the stores
//
// # Error Handling
//
// Specific errors wrap one of three kinds so handlers can switch on them:
//
//	errors.Is(err, ErrNotFound)    // unknown book, missing reservation
//	errors.Is(err, ErrConflict)    // user already holds a reservation
//	errors.Is(err, ErrUnavailable) // no free copy and not a priority request
//
// # Example Usage
//
//	svc := NewReservationService(ReservationServiceConfig{
//	    Books:        bookStore,
//	    Reservations: reservationStore,
//	    Publisher:    Publishers{hub, rabbit},
//	})
//	waitlisted, err := svc.ReservePriority(ctx, "nebojsa", "1")
package service
