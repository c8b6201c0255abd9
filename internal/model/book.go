package model

// Book is a catalog entry with a finite number of lendable copies
type Book struct {
	ID              string `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	CopiesAvailable int    `json:"copies_available" db:"copies_available"`
}

// HasAvailableCopies returns true if at least one copy can be lent out
func (b *Book) HasAvailableCopies() bool {
	return b.CopiesAvailable > 0
}

// Clone returns a copy that does not alias the receiver
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// SeedBook is one entry of a catalog seed file
type SeedBook struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	CopiesAvailable int    `json:"copies_available"`
}

// Validate validates a seed entry
func (s *SeedBook) Validate() []FieldError {
	var errors []FieldError

	if s.ID == "" {
		errors = append(errors, FieldError{Field: "id", Message: "id is required"})
	}
	if len(s.ID) > MaxIDLength {
		errors = append(errors, FieldError{Field: "id", Message: "id exceeds maximum length"})
	}
	if s.CopiesAvailable < 0 {
		errors = append(errors, FieldError{Field: "copies_available", Message: "copies_available must not be negative"})
	}

	return errors
}

// Book returns the catalog record for the seed entry
func (s *SeedBook) Book() *Book {
	return &Book{
		ID:              s.ID,
		Title:           s.Title,
		CopiesAvailable: s.CopiesAvailable,
	}
}
