package handler

import (
	"net/http"
)

// BookHandler handles read-only catalog requests
type BookHandler struct {
	reservations *ReservationHandler
}

// NewBookHandler creates a book handler sharing the reservation handler's service
func NewBookHandler(reservations *ReservationHandler) *BookHandler {
	return &BookHandler{reservations: reservations}
}

// Get handles GET /v1/books/{bookId}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID, pd := pathID(r, "bookId")
	if pd != nil {
		WriteError(w, pd)
		return
	}

	book, err := h.reservations.service.GetBook(r.Context(), bookID)
	if err != nil {
		h.reservations.writeServiceError(w, r, err, "get book")
		return
	}

	WriteData(w, http.StatusOK, book, map[string]string{
		"reservations": "/v1/books/" + bookID + "/reservations",
		"waitlist":     "/v1/books/" + bookID + "/waitlist",
		"events":       "/v1/books/" + bookID + "/events",
	})
}

// Waitlist handles GET /v1/books/{bookId}/waitlist. The book must exist;
// an empty queue is returned as an empty list.
func (h *BookHandler) Waitlist(w http.ResponseWriter, r *http.Request) {
	bookID, pd := pathID(r, "bookId")
	if pd != nil {
		WriteError(w, pd)
		return
	}

	if _, err := h.reservations.service.GetBook(r.Context(), bookID); err != nil {
		h.reservations.writeServiceError(w, r, err, "get waitlist")
		return
	}

	WriteData(w, http.StatusOK, h.reservations.service.WaitingList(bookID), nil)
}
