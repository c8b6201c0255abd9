package handler

import (
	"log/slog"
	"net/http"

	"github.com/forgo/lending/internal/service"
)

// RouterConfig holds everything the HTTP routes are served from
type RouterConfig struct {
	Reservations ReservationService
	Events       *service.EventHub // optional, SSE routes are skipped when nil
	Logger       *slog.Logger
}

// NewRouter registers every API route on a new ServeMux
func NewRouter(cfg RouterConfig) *http.ServeMux {
	reservationHandler := NewReservationHandler(ReservationHandlerConfig{
		Service: cfg.Reservations,
		Logger:  cfg.Logger,
	})
	bookHandler := NewBookHandler(reservationHandler)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", Health)

	// Books
	mux.HandleFunc("GET /v1/books/{bookId}", bookHandler.Get)
	mux.HandleFunc("GET /v1/books/{bookId}/waitlist", bookHandler.Waitlist)

	// Reservations
	mux.HandleFunc("GET /v1/books/{bookId}/reservations", reservationHandler.ListForBook)
	mux.HandleFunc("POST /v1/books/{bookId}/reservations", reservationHandler.Create)
	mux.HandleFunc("DELETE /v1/books/{bookId}/reservations/{userId}", reservationHandler.Cancel)
	mux.HandleFunc("GET /v1/users/{userId}/reservations", reservationHandler.ListForUser)

	// Events (SSE)
	if cfg.Events != nil {
		eventsHandler := NewEventsHandler(cfg.Events)
		mux.HandleFunc("GET /v1/books/{bookId}/events", eventsHandler.BookStream)
		mux.HandleFunc("GET /v1/users/{userId}/events", eventsHandler.UserStream)
	}

	return mux
}
