// Package helpers provides HTTP test utilities for the lending API.
//
// # Request Building
//
//	resp := helpers.NewRequest(t, "POST", "/v1/books/1/reservations").
//	    WithBody(map[string]any{"user_id": "nebojsa"}).
//	    Do(router)
//
// # Assertions
//
//	helpers.AssertStatus(t, resp, http.StatusCreated)
//	helpers.AssertProblemDetails(t, resp, http.StatusConflict, model.ErrCodeUnavailable)
//	helpers.AssertValidationError(t, resp, "user_id")
//
//	var reservations []model.Reservation
//	helpers.DecodeData(t, resp, &reservations)
package helpers
