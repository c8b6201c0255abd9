// Package fixtures provides test data factories for the lending API.
//
//	f := fixtures.New(books, reservations)
//	book := f.CreateBook(t)                          // ten copies
//	empty := f.CreateBook(t, fixtures.WithCopies(0)) // nothing on the shelf
//	f.CreateReservation(t, fixtures.UserID(), book)
package fixtures
