// Package handler provides HTTP request handlers for the lending API.
//
// Each handler struct encapsulates the dependencies needed to serve one
// feature area. NewRouter wires them onto a Go 1.22 pattern ServeMux:
//
//	GET    /health
//	GET    /v1/books/{bookId}
//	GET    /v1/books/{bookId}/waitlist
//	GET    /v1/books/{bookId}/reservations
//	POST   /v1/books/{bookId}/reservations          {"user_id", "priority"}
//	DELETE /v1/books/{bookId}/reservations/{userId}
//	GET    /v1/users/{userId}/reservations
//	GET    /v1/books/{bookId}/events                (SSE)
//	GET    /v1/users/{userId}/events                (SSE)
//
// # Response Format
//
// Successful responses are wrapped as {"data": ...} with optional _links.
// Errors are RFC 9457 Problem Details; MapServiceError turns service
// sentinel errors into 404, 409 or 500 responses. A reserve that finds no
// free copy is a 409 carrying the unavailable error code so clients can
// tell it apart from a duplicate reservation.
package handler
