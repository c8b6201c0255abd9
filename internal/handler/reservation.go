package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/forgo/lending/internal/middleware"
	"github.com/forgo/lending/internal/model"
)

// ReservationService is the slice of the service layer the HTTP API needs
type ReservationService interface {
	Reserve(ctx context.Context, userID, bookID string) error
	ReservePriority(ctx context.Context, userID, bookID string) (waitlisted bool, err error)
	Cancel(ctx context.Context, userID, bookID string) error
	ListReservations(ctx context.Context, userID string) ([]*model.Reservation, error)
	ListReservationsForBook(ctx context.Context, bookID string) ([]*model.Reservation, error)
	WaitingList(bookID string) *model.WaitingListView
	GetBook(ctx context.Context, bookID string) (*model.Book, error)
}

// ReservationHandler handles reservation HTTP requests
type ReservationHandler struct {
	service ReservationService
	logger  *slog.Logger
}

// ReservationHandlerConfig holds dependencies for the reservation handler
type ReservationHandlerConfig struct {
	Service ReservationService
	Logger  *slog.Logger
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(cfg ReservationHandlerConfig) *ReservationHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReservationHandler{service: cfg.Service, logger: logger}
}

// Create handles POST /v1/books/{bookId}/reservations
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID, pd := pathID(r, "bookId")
	if pd != nil {
		WriteError(w, pd)
		return
	}

	var req model.CreateReservationRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		WriteError(w, model.NewValidationError(errors))
		return
	}

	receipt := &model.ReservationReceipt{UserID: req.UserID, BookID: bookID}
	var err error
	if req.Priority {
		receipt.Waitlisted, err = h.service.ReservePriority(ctx, req.UserID, bookID)
	} else {
		err = h.service.Reserve(ctx, req.UserID, bookID)
	}
	if err != nil {
		h.writeServiceError(w, r, err, "reserve book")
		return
	}

	WriteData(w, http.StatusCreated, receipt, map[string]string{
		"self":     "/v1/books/" + bookID + "/reservations/" + req.UserID,
		"book":     "/v1/books/" + bookID,
		"waitlist": "/v1/books/" + bookID + "/waitlist",
	})
}

// Cancel handles DELETE /v1/books/{bookId}/reservations/{userId}
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	bookID, pd := pathID(r, "bookId")
	if pd != nil {
		WriteError(w, pd)
		return
	}
	userID, pd := pathID(r, "userId")
	if pd != nil {
		WriteError(w, pd)
		return
	}

	if err := h.service.Cancel(r.Context(), userID, bookID); err != nil {
		h.writeServiceError(w, r, err, "cancel reservation")
		return
	}

	WriteNoContent(w)
}

// ListForBook handles GET /v1/books/{bookId}/reservations
func (h *ReservationHandler) ListForBook(w http.ResponseWriter, r *http.Request) {
	bookID, pd := pathID(r, "bookId")
	if pd != nil {
		WriteError(w, pd)
		return
	}

	reservations, err := h.service.ListReservationsForBook(r.Context(), bookID)
	if err != nil {
		h.writeServiceError(w, r, err, "list reservations")
		return
	}

	WriteData(w, http.StatusOK, reservations, nil)
}

// ListForUser handles GET /v1/users/{userId}/reservations
func (h *ReservationHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, pd := pathID(r, "userId")
	if pd != nil {
		WriteError(w, pd)
		return
	}

	reservations, err := h.service.ListReservations(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err, "list reservations")
		return
	}

	WriteData(w, http.StatusOK, reservations, nil)
}

// writeServiceError maps err and logs anything that ends up as a 500
func (h *ReservationHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	pd := MapServiceErrorWithContext(err, operation)
	if pd.Status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), operation+" failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}
	WriteError(w, pd)
}
