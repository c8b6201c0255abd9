package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/forgo/lending/internal/model"
	"github.com/forgo/lending/internal/service"
	"github.com/forgo/lending/internal/testing/helpers"
)

// ============================================================================
// Mock ReservationService
// ============================================================================

type mockReservationService struct {
	reserveFunc                 func(ctx context.Context, userID, bookID string) error
	reservePriorityFunc         func(ctx context.Context, userID, bookID string) (bool, error)
	cancelFunc                  func(ctx context.Context, userID, bookID string) error
	listReservationsFunc        func(ctx context.Context, userID string) ([]*model.Reservation, error)
	listReservationsForBookFunc func(ctx context.Context, bookID string) ([]*model.Reservation, error)
	waitingListFunc             func(bookID string) *model.WaitingListView
	getBookFunc                 func(ctx context.Context, bookID string) (*model.Book, error)
}

func (m *mockReservationService) Reserve(ctx context.Context, userID, bookID string) error {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, userID, bookID)
	}
	return nil
}

func (m *mockReservationService) ReservePriority(ctx context.Context, userID, bookID string) (bool, error) {
	if m.reservePriorityFunc != nil {
		return m.reservePriorityFunc(ctx, userID, bookID)
	}
	return false, nil
}

func (m *mockReservationService) Cancel(ctx context.Context, userID, bookID string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, userID, bookID)
	}
	return nil
}

func (m *mockReservationService) ListReservations(ctx context.Context, userID string) ([]*model.Reservation, error) {
	if m.listReservationsFunc != nil {
		return m.listReservationsFunc(ctx, userID)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationService) ListReservationsForBook(ctx context.Context, bookID string) ([]*model.Reservation, error) {
	if m.listReservationsForBookFunc != nil {
		return m.listReservationsForBookFunc(ctx, bookID)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationService) WaitingList(bookID string) *model.WaitingListView {
	if m.waitingListFunc != nil {
		return m.waitingListFunc(bookID)
	}
	return &model.WaitingListView{BookID: bookID, UserIDs: []string{}}
}

func (m *mockReservationService) GetBook(ctx context.Context, bookID string) (*model.Book, error) {
	if m.getBookFunc != nil {
		return m.getBookFunc(ctx, bookID)
	}
	return &model.Book{ID: bookID, Title: "The Bible", CopiesAvailable: 10}, nil
}

func newTestRouter(svc ReservationService) http.Handler {
	return NewRouter(RouterConfig{Reservations: svc})
}

// ============================================================================
// Create Tests
// ============================================================================

func TestCreate_Reserve_Returns201WithReceipt(t *testing.T) {
	t.Parallel()

	var gotUser, gotBook string
	svc := &mockReservationService{
		reserveFunc: func(_ context.Context, userID, bookID string) error {
			gotUser, gotBook = userID, bookID
			return nil
		},
		reservePriorityFunc: func(context.Context, string, string) (bool, error) {
			t.Error("priority path should not be taken")
			return false, nil
		},
	}

	resp := helpers.NewRequest(t, http.MethodPost, "/v1/books/1/reservations").
		WithBody(map[string]any{"user_id": "Nebojsa"}).
		Do(newTestRouter(svc))

	helpers.AssertStatus(t, resp, http.StatusCreated)
	if gotUser != "Nebojsa" || gotBook != "1" {
		t.Errorf("service called with (%q, %q)", gotUser, gotBook)
	}
	var receipt model.ReservationReceipt
	helpers.DecodeData(t, resp, &receipt)
	if receipt.Waitlisted {
		t.Error("plain reserve must not report waitlisted")
	}
}

func TestCreate_Priority_ReportsWaitlisted(t *testing.T) {
	t.Parallel()

	svc := &mockReservationService{
		reserveFunc: func(context.Context, string, string) error {
			t.Error("plain path should not be taken")
			return nil
		},
		reservePriorityFunc: func(context.Context, string, string) (bool, error) {
			return true, nil
		},
	}

	resp := helpers.NewRequest(t, http.MethodPost, "/v1/books/1/reservations").
		WithBody(map[string]any{"user_id": "Novak", "priority": true}).
		Do(newTestRouter(svc))

	helpers.AssertStatus(t, resp, http.StatusCreated)
	var receipt model.ReservationReceipt
	helpers.DecodeData(t, resp, &receipt)
	if !receipt.Waitlisted {
		t.Error("expected waitlisted receipt")
	}
}

func TestCreate_Priority_PromotedBeforeResponse_StillReportsWaitlisted(t *testing.T) {
	t.Parallel()

	// A cancel promoted Novak between the reserve and the response, so the
	// queue no longer names them.
	svc := &mockReservationService{
		reservePriorityFunc: func(context.Context, string, string) (bool, error) {
			return true, nil
		},
		waitingListFunc: func(bookID string) *model.WaitingListView {
			return &model.WaitingListView{BookID: bookID, UserIDs: []string{}}
		},
	}

	resp := helpers.NewRequest(t, http.MethodPost, "/v1/books/1/reservations").
		WithBody(map[string]any{"user_id": "Novak", "priority": true}).
		Do(newTestRouter(svc))

	helpers.AssertStatus(t, resp, http.StatusCreated)
	var receipt model.ReservationReceipt
	helpers.DecodeData(t, resp, &receipt)
	if !receipt.Waitlisted {
		t.Error("receipt should reflect what the reserve call did")
	}
}

func TestCreate_Priority_WithCopies_NotWaitlisted(t *testing.T) {
	t.Parallel()

	svc := &mockReservationService{
		reservePriorityFunc: func(context.Context, string, string) (bool, error) {
			return false, nil
		},
		waitingListFunc: func(bookID string) *model.WaitingListView {
			return &model.WaitingListView{BookID: bookID, UserIDs: []string{"Novak"}}
		},
	}

	resp := helpers.NewRequest(t, http.MethodPost, "/v1/books/1/reservations").
		WithBody(map[string]any{"user_id": "Novak", "priority": true}).
		Do(newTestRouter(svc))

	helpers.AssertStatus(t, resp, http.StatusCreated)
	var receipt model.ReservationReceipt
	helpers.DecodeData(t, resp, &receipt)
	if receipt.Waitlisted {
		t.Error("expected a held copy receipt")
	}
}

func TestCreate_MissingUserID_Returns422(t *testing.T) {
	t.Parallel()

	resp := helpers.NewRequest(t, http.MethodPost, "/v1/books/1/reservations").
		WithBody(map[string]any{"priority": true}).
		Do(newTestRouter(&mockReservationService{}))

	helpers.AssertValidationError(t, resp, "user_id")
}

func TestCreate_MalformedBody_Returns400(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"user_id":`, `{"user_id":"a","extra":1}`} {
		resp := helpers.NewRequest(t, http.MethodPost, "/v1/books/1/reservations").
			WithRawBody(body).
			Do(newTestRouter(&mockReservationService{}))

		helpers.AssertProblemDetails(t, resp, http.StatusBadRequest, model.ErrCodeInvalidInput)
	}
}

func TestCreate_BookIDTooLong_Returns422(t *testing.T) {
	t.Parallel()

	resp := helpers.NewRequest(t, http.MethodPost, "/v1/books/"+strings.Repeat("b", model.MaxIDLength+1)+"/reservations").
		WithBody(map[string]any{"user_id": "Nebojsa"}).
		Do(newTestRouter(&mockReservationService{}))

	helpers.AssertValidationError(t, resp, "bookId")
}

func TestCreate_ServiceErrors_MapToProblems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   model.ErrorCode
	}{
		{"book missing", service.ErrBookNotFound, http.StatusNotFound, model.ErrCodeNotFound},
		{"duplicate", service.ErrAlreadyReserved, http.StatusConflict, model.ErrCodeConflict},
		{"no copies", service.ErrNoCopiesAvailable, http.StatusConflict, model.ErrCodeUnavailable},
		{"store down", errors.New("disk on fire"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &mockReservationService{
				reserveFunc: func(context.Context, string, string) error { return tt.err },
			}

			resp := helpers.NewRequest(t, http.MethodPost, "/v1/books/1/reservations").
				WithBody(map[string]any{"user_id": "Nebojsa"}).
				Do(newTestRouter(svc))

			helpers.AssertProblemDetails(t, resp, tt.status, tt.code)
		})
	}
}

func TestCreate_InternalError_DoesNotLeakDetail(t *testing.T) {
	t.Parallel()

	svc := &mockReservationService{
		reserveFunc: func(context.Context, string, string) error { return errors.New("password=hunter2") },
	}

	resp := helpers.NewRequest(t, http.MethodPost, "/v1/books/1/reservations").
		WithBody(map[string]any{"user_id": "Nebojsa"}).
		Do(newTestRouter(svc))

	if strings.Contains(resp.Body.String(), "hunter2") {
		t.Errorf("internal error leaked: %s", resp.Body.String())
	}
}

// ============================================================================
// Cancel Tests
// ============================================================================

func TestCancel_Returns204(t *testing.T) {
	t.Parallel()

	var gotUser, gotBook string
	svc := &mockReservationService{
		cancelFunc: func(_ context.Context, userID, bookID string) error {
			gotUser, gotBook = userID, bookID
			return nil
		},
	}

	resp := helpers.NewRequest(t, http.MethodDelete, "/v1/books/2/reservations/Michael").Do(newTestRouter(svc))

	helpers.AssertStatus(t, resp, http.StatusNoContent)
	if gotUser != "Michael" || gotBook != "2" {
		t.Errorf("service called with (%q, %q)", gotUser, gotBook)
	}
}

func TestCancel_NoReservation_Returns404(t *testing.T) {
	t.Parallel()

	svc := &mockReservationService{
		cancelFunc: func(context.Context, string, string) error { return service.ErrReservationNotFound },
	}

	resp := helpers.NewRequest(t, http.MethodDelete, "/v1/books/2/reservations/Michael").Do(newTestRouter(svc))

	helpers.AssertProblemDetails(t, resp, http.StatusNotFound, model.ErrCodeNotFound)
}

// ============================================================================
// List Tests
// ============================================================================

func TestListForBook_ReturnsEnvelope(t *testing.T) {
	t.Parallel()

	svc := &mockReservationService{
		listReservationsForBookFunc: func(_ context.Context, bookID string) ([]*model.Reservation, error) {
			return []*model.Reservation{model.NewReservation("Nebojsa", bookID)}, nil
		},
	}

	resp := helpers.NewRequest(t, http.MethodGet, "/v1/books/1/reservations").Do(newTestRouter(svc))

	helpers.AssertStatus(t, resp, http.StatusOK)
	var reservations []model.Reservation
	helpers.DecodeData(t, resp, &reservations)
	if len(reservations) != 1 || reservations[0].UserID != "Nebojsa" || reservations[0].BookID != "1" {
		t.Errorf("unexpected reservations: %+v", reservations)
	}
}

func TestListForUser_Empty_ReturnsEmptyArray(t *testing.T) {
	t.Parallel()

	resp := helpers.NewRequest(t, http.MethodGet, "/v1/users/nobody/reservations").Do(newTestRouter(&mockReservationService{}))

	helpers.AssertStatus(t, resp, http.StatusOK)
	if !strings.Contains(resp.Body.String(), `"data":[]`) {
		t.Errorf("expected empty array, got %s", resp.Body.String())
	}
}

// ============================================================================
// Book Tests
// ============================================================================

func TestGetBook_Found_ReturnsBookWithLinks(t *testing.T) {
	t.Parallel()

	resp := helpers.NewRequest(t, http.MethodGet, "/v1/books/1").Do(newTestRouter(&mockReservationService{}))

	helpers.AssertStatus(t, resp, http.StatusOK)
	var book model.Book
	helpers.DecodeData(t, resp, &book)
	if book.ID != "1" || book.CopiesAvailable != 10 {
		t.Errorf("unexpected book: %+v", book)
	}
	if !strings.Contains(resp.Body.String(), `"waitlist":"/v1/books/1/waitlist"`) {
		t.Errorf("expected waitlist link, got %s", resp.Body.String())
	}
}

func TestGetBook_Missing_Returns404(t *testing.T) {
	t.Parallel()

	svc := &mockReservationService{
		getBookFunc: func(context.Context, string) (*model.Book, error) { return nil, service.ErrBookNotFound },
	}

	resp := helpers.NewRequest(t, http.MethodGet, "/v1/books/999").Do(newTestRouter(svc))

	helpers.AssertProblemDetails(t, resp, http.StatusNotFound, model.ErrCodeNotFound)
}

func TestWaitlist_MissingBook_Returns404(t *testing.T) {
	t.Parallel()

	svc := &mockReservationService{
		getBookFunc: func(context.Context, string) (*model.Book, error) { return nil, service.ErrBookNotFound },
		waitingListFunc: func(string) *model.WaitingListView {
			t.Error("waiting list should not be read for a missing book")
			return nil
		},
	}

	resp := helpers.NewRequest(t, http.MethodGet, "/v1/books/999/waitlist").Do(newTestRouter(svc))

	helpers.AssertProblemDetails(t, resp, http.StatusNotFound, model.ErrCodeNotFound)
}

// ============================================================================
// MapServiceError Tests
// ============================================================================

func TestMapServiceError_WrappedErrorsKeepTheirKind(t *testing.T) {
	t.Parallel()

	wrapped := errors.Join(errors.New("context"), service.ErrNoCopiesAvailable)
	pd := MapServiceError(wrapped)

	if pd.Code != model.ErrCodeUnavailable {
		t.Errorf("expected unavailable code, got %d", pd.Code)
	}
	if MapServiceError(nil) != nil {
		t.Error("nil error should map to nil")
	}
}

func TestHealth_ReturnsOK(t *testing.T) {
	t.Parallel()

	resp := helpers.NewRequest(t, http.MethodGet, "/health").Do(newTestRouter(&mockReservationService{}))

	helpers.AssertStatus(t, resp, http.StatusOK)
}
