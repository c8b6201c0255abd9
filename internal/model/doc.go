// Package model defines domain entities and data structures for the lending API.
//
// The model package contains the struct definitions shared by every layer:
// catalog books, reservations, reservation events, request types and the
// API error representation.
//
// # Domain Entities
//
//   - Book: catalog entry with a count of copies available for lending
//   - Reservation: a user's claim on a book, either a held copy or a
//     tracked priority claim still waiting for one
//   - ReservationEvent: a completed reservation state change
//
// # Serialization
//
// Models carry json tags for the API and db tags for the SQL stores:
//
//	type Book struct {
//	    ID              string `json:"id" db:"id"`
//	    Title           string `json:"title" db:"title"`
//	    CopiesAvailable int    `json:"copies_available" db:"copies_available"`
//	}
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type    string    `json:"type"`
//	    Title   string    `json:"title"`
//	    Status  int       `json:"status"`
//	    Detail  string    `json:"detail"`
//	}
package model
