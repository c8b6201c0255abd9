package repository

import (
	"context"
	"testing"
	"time"

	"github.com/forgo/lending/internal/model"
)

func TestMemoryReservationRepository_InsertionOrder(t *testing.T) {
	t.Parallel()

	repo := NewMemoryReservationRepository()
	ctx := context.Background()

	for _, user := range []string{"c", "a", "b"} {
		if err := repo.Save(ctx, model.NewReservation(user, "1")); err != nil {
			t.Fatalf("save %s: %v", user, err)
		}
	}
	_ = repo.Delete(ctx, "a", "1")
	_ = repo.Save(ctx, model.NewReservation("a", "1"))

	list, _ := repo.FindByBook(ctx, "1")
	var got []string
	for _, r := range list {
		got = append(got, r.UserID)
	}

	want := []string{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestMemoryReservationRepository_KeepsExplicitCreatedOn(t *testing.T) {
	t.Parallel()

	repo := NewMemoryReservationRepository()
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	r := &model.Reservation{UserID: "u", BookID: "1", CreatedOn: when}
	_ = repo.Save(context.Background(), r)

	list, _ := repo.FindByUser(context.Background(), "u")
	if len(list) != 1 || !list[0].CreatedOn.Equal(when) {
		t.Errorf("expected created_on %v, got %+v", when, list)
	}
}

func TestMemoryBookRepository_SaveCopiesInput(t *testing.T) {
	t.Parallel()

	repo := NewMemoryBookRepository()
	book := &model.Book{ID: "1", CopiesAvailable: 3}
	_ = repo.Save(context.Background(), book)

	book.CopiesAvailable = 0

	got, _ := repo.FindByID(context.Background(), "1")
	if got.CopiesAvailable != 3 {
		t.Errorf("expected stored copy to be unaffected, got %d", got.CopiesAvailable)
	}
}
