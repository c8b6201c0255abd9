package service

import (
	"errors"
	"fmt"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Error Kinds =====
// Handlers switch on these with errors.Is; every specific error below
// wraps exactly one of them.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

// ===== Book Errors =====
var (
	ErrBookNotFound      = fmt.Errorf("book %w", ErrNotFound)
	ErrNoCopiesAvailable = fmt.Errorf("no copies available: %w", ErrUnavailable)
)

// ===== Reservation Errors =====
var (
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)
	ErrAlreadyReserved     = fmt.Errorf("the user already reserved this book: %w", ErrConflict)
)
