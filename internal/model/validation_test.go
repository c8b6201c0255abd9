package model

import (
	"strings"
	"testing"
)

// ============================================================================
// CreateReservationRequest Tests
// ============================================================================

func TestCreateReservationRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &CreateReservationRequest{UserID: "Nebojsa", Priority: true}

	if errors := req.Validate(); len(errors) > 0 {
		t.Errorf("expected no errors, got %v", errors)
	}
}

func TestCreateReservationRequest_Validate_MissingUserID(t *testing.T) {
	t.Parallel()

	req := &CreateReservationRequest{}

	errors := req.Validate()
	if len(errors) != 1 || errors[0].Field != "user_id" {
		t.Errorf("expected user_id error, got %v", errors)
	}
}

func TestCreateReservationRequest_Validate_UserIDTooLong(t *testing.T) {
	t.Parallel()

	req := &CreateReservationRequest{UserID: strings.Repeat("u", MaxIDLength+1)}

	errors := req.Validate()
	if len(errors) != 1 || !strings.Contains(errors[0].Message, "maximum length") {
		t.Errorf("expected length error, got %v", errors)
	}
}

// ============================================================================
// SeedBook Tests
// ============================================================================

func TestSeedBook_Validate_NegativeCopies(t *testing.T) {
	t.Parallel()

	seed := &SeedBook{ID: "1", Title: "The Bible", CopiesAvailable: -1}

	errors := seed.Validate()
	if len(errors) != 1 || errors[0].Field != "copies_available" {
		t.Errorf("expected copies_available error, got %v", errors)
	}
}

func TestSeedBook_Validate_MissingID(t *testing.T) {
	t.Parallel()

	seed := &SeedBook{Title: "Untitled"}

	errors := seed.Validate()
	if len(errors) != 1 || errors[0].Field != "id" {
		t.Errorf("expected id error, got %v", errors)
	}
}

func TestSeedBook_Book_CopiesFields(t *testing.T) {
	t.Parallel()

	seed := &SeedBook{ID: "2", Title: "WW2 History", CopiesAvailable: 3}
	book := seed.Book()

	if book.ID != "2" || book.Title != "WW2 History" || book.CopiesAvailable != 3 {
		t.Errorf("unexpected book: %+v", book)
	}
}

// ============================================================================
// Clone Tests
// ============================================================================

func TestBook_Clone_DoesNotAlias(t *testing.T) {
	t.Parallel()

	book := &Book{ID: "1", Title: "The Bible", CopiesAvailable: 10}
	clone := book.Clone()
	clone.CopiesAvailable = 9

	if book.CopiesAvailable != 10 {
		t.Errorf("clone mutation leaked into original: %d", book.CopiesAvailable)
	}

	var nilBook *Book
	if nilBook.Clone() != nil {
		t.Error("expected nil clone of nil book")
	}
}

func TestBook_HasAvailableCopies(t *testing.T) {
	t.Parallel()

	if (&Book{CopiesAvailable: 0}).HasAvailableCopies() {
		t.Error("expected no available copies at 0")
	}
	if !(&Book{CopiesAvailable: 1}).HasAvailableCopies() {
		t.Error("expected available copies at 1")
	}
}
