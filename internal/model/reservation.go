package model

import "time"

// MaxIDLength bounds user and book identifiers accepted over the API
const MaxIDLength = 128

// Reservation is an active claim by a user on a book. It stands either for
// a checked-out copy or for a priority user still waiting for one.
type Reservation struct {
	UserID    string    `json:"user_id" db:"user_id"`
	BookID    string    `json:"book_id" db:"book_id"`
	CreatedOn time.Time `json:"created_on" db:"created_on"`
}

// NewReservation creates a reservation for the given user and book
func NewReservation(userID, bookID string) *Reservation {
	return &Reservation{
		UserID: userID,
		BookID: bookID,
	}
}

// Clone returns a copy that does not alias the receiver
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// CreateReservationRequest represents a request to reserve a book
type CreateReservationRequest struct {
	UserID   string `json:"user_id"`
	Priority bool   `json:"priority,omitempty"`
}

// Validate validates the create reservation request
func (r *CreateReservationRequest) Validate() []FieldError {
	var errors []FieldError

	if r.UserID == "" {
		errors = append(errors, FieldError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if len(r.UserID) > MaxIDLength {
		errors = append(errors, FieldError{
			Field:   "user_id",
			Message: "user_id exceeds maximum length",
		})
	}

	return errors
}

// WaitingListView is the queue of priority users waiting for a book
type WaitingListView struct {
	BookID  string   `json:"book_id"`
	UserIDs []string `json:"user_ids"`
}

// ReservationReceipt acknowledges a successful reserve call. Waitlisted is
// set when the user was queued instead of receiving a copy.
type ReservationReceipt struct {
	UserID     string `json:"user_id"`
	BookID     string `json:"book_id"`
	Waitlisted bool   `json:"waitlisted"`
}
