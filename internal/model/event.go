package model

import "time"

// ReservationEventType identifies a reservation state change
type ReservationEventType string

const (
	EventReservationCreated    ReservationEventType = "reservation.created"
	EventReservationWaitlisted ReservationEventType = "reservation.waitlisted"
	EventReservationCancelled  ReservationEventType = "reservation.cancelled"
	EventReservationPromoted   ReservationEventType = "reservation.promoted"
)

// ReservationEvent describes a completed reservation state change
type ReservationEvent struct {
	Type            ReservationEventType `json:"type"`
	UserID          string               `json:"user_id"`
	BookID          string               `json:"book_id"`
	CopiesAvailable int                  `json:"copies_available"`
	OccurredAt      time.Time            `json:"occurred_at"`
}

// NewReservationEvent creates an event stamped with the current time
func NewReservationEvent(eventType ReservationEventType, userID string, book *Book) *ReservationEvent {
	return &ReservationEvent{
		Type:            eventType,
		UserID:          userID,
		BookID:          book.ID,
		CopiesAvailable: book.CopiesAvailable,
		OccurredAt:      time.Now().UTC(),
	}
}
