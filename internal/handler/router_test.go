package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forgo/lending/internal/model"
	"github.com/forgo/lending/internal/repository"
	"github.com/forgo/lending/internal/service"
	"github.com/forgo/lending/internal/testing/fixtures"
	"github.com/forgo/lending/internal/testing/helpers"
)

type apiFixture struct {
	router  http.Handler
	hub     *service.EventHub
	books   *repository.MemoryBookRepository
	factory *fixtures.Factory
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	books := repository.NewMemoryBookRepository()
	reservations := repository.NewMemoryReservationRepository()
	hub := service.NewEventHub()
	t.Cleanup(hub.Close)

	svc := service.NewReservationService(service.ReservationServiceConfig{
		Books:        books,
		Reservations: reservations,
		Publisher:    hub,
	})

	return &apiFixture{
		router:  NewRouter(RouterConfig{Reservations: svc, Events: hub}),
		hub:     hub,
		books:   books,
		factory: fixtures.New(books, reservations),
	}
}

func (f *apiFixture) reserve(t *testing.T, bookID, userID string, priority bool) *httptest.ResponseRecorder {
	t.Helper()
	return helpers.NewRequest(t, http.MethodPost, "/v1/books/"+bookID+"/reservations").
		WithBody(map[string]any{"user_id": userID, "priority": priority}).
		Do(f.router)
}

func (f *apiFixture) copies(t *testing.T, bookID string) int {
	t.Helper()
	resp := helpers.NewRequest(t, http.MethodGet, "/v1/books/"+bookID).Do(f.router)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var book model.Book
	helpers.DecodeData(t, resp, &book)
	return book.CopiesAvailable
}

// ============================================================================
// End-to-end Flow Tests
// ============================================================================

func TestAPI_ReserveUntilUnavailable_ThenQueueAndPromote(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.factory.CreateBook(t, fixtures.WithBookID("2"), fixtures.WithCopies(1))

	helpers.AssertStatus(t, f.reserve(t, "2", "Nebojsa", false), http.StatusCreated)
	if got := f.copies(t, "2"); got != 0 {
		t.Fatalf("expected 0 copies after reserve, got %d", got)
	}

	helpers.AssertProblemDetails(t, f.reserve(t, "2", "Michael", false), http.StatusConflict, model.ErrCodeUnavailable)

	resp := f.reserve(t, "2", "Michael", true)
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var receipt model.ReservationReceipt
	helpers.DecodeData(t, resp, &receipt)
	if !receipt.Waitlisted {
		t.Fatal("expected priority reserve to be waitlisted")
	}

	resp = helpers.NewRequest(t, http.MethodGet, "/v1/books/2/waitlist").Do(f.router)
	var queue model.WaitingListView
	helpers.DecodeData(t, resp, &queue)
	if len(queue.UserIDs) != 1 || queue.UserIDs[0] != "Michael" {
		t.Fatalf("unexpected queue %+v", queue)
	}

	helpers.AssertStatus(t,
		helpers.NewRequest(t, http.MethodDelete, "/v1/books/2/reservations/Nebojsa").Do(f.router),
		http.StatusNoContent)

	if got := f.copies(t, "2"); got != 0 {
		t.Errorf("freed copy should pass to Michael, copies = %d", got)
	}
	resp = helpers.NewRequest(t, http.MethodGet, "/v1/books/2/waitlist").Do(f.router)
	helpers.DecodeData(t, resp, &queue)
	if len(queue.UserIDs) != 0 {
		t.Errorf("expected empty queue after promotion, got %v", queue.UserIDs)
	}

	resp = helpers.NewRequest(t, http.MethodGet, "/v1/users/Michael/reservations").Do(f.router)
	var mine []model.Reservation
	helpers.DecodeData(t, resp, &mine)
	if len(mine) != 1 || mine[0].BookID != "2" {
		t.Errorf("expected Michael to hold book 2, got %+v", mine)
	}
}

func TestAPI_DuplicateReserve_Returns409Conflict(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.factory.CreateBook(t, fixtures.WithBookID("1"), fixtures.WithCopies(10))

	helpers.AssertStatus(t, f.reserve(t, "1", "Nebojsa", false), http.StatusCreated)
	helpers.AssertProblemDetails(t, f.reserve(t, "1", "Nebojsa", false), http.StatusConflict, model.ErrCodeConflict)

	if got := f.copies(t, "1"); got != 9 {
		t.Errorf("expected 9 copies, got %d", got)
	}
}

func TestAPI_UnknownBook_Returns404(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	helpers.AssertProblemDetails(t, f.reserve(t, "999", "Nebojsa", false), http.StatusNotFound, model.ErrCodeNotFound)
	helpers.AssertProblemDetails(t,
		helpers.NewRequest(t, http.MethodDelete, "/v1/books/999/reservations/Nebojsa").Do(f.router),
		http.StatusNotFound, model.ErrCodeNotFound)
}

func TestAPI_ListForUser_ReturnsStoredReservations(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	user := fixtures.UserID()
	first := f.factory.CreateBook(t, fixtures.WithCopies(1))
	second := f.factory.CreateBook(t, fixtures.WithCopies(1))
	f.factory.CreateReservation(t, user, first)
	f.factory.CreateReservation(t, user, second)

	resp := helpers.NewRequest(t, http.MethodGet, "/v1/users/"+user+"/reservations").
		WithHeader("Accept", "application/json").
		Do(f.router)
	helpers.AssertStatus(t, resp, http.StatusOK)

	var list []model.Reservation
	helpers.DecodeData(t, resp, &list)
	if len(list) != 2 || list[0].BookID != first.ID || list[1].BookID != second.ID {
		t.Errorf("expected both reservations oldest first, got %+v", list)
	}
}

// ============================================================================
// SSE Tests
// ============================================================================

func TestAPI_BookStream_ReceivesReservationEvents(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.factory.CreateBook(t, fixtures.WithBookID("1"), fixtures.WithCopies(10))

	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/books/1/events", nil)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(prefix string) string {
		t.Helper()
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}

	waitFor("event: connected")
	if f.hub.SubscriberCount("1") != 1 {
		t.Fatalf("expected one subscriber, got %d", f.hub.SubscriberCount("1"))
	}

	helpers.AssertStatus(t, f.reserve(t, "1", "Nebojsa", false), http.StatusCreated)

	waitFor("event: " + string(model.EventReservationCreated))
	data := waitFor("data: ")
	if !strings.Contains(data, `"user_id":"Nebojsa"`) || !strings.Contains(data, `"copies_available":9`) {
		t.Errorf("unexpected event payload %s", data)
	}
}
