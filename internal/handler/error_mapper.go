package handler

import (
	"errors"

	"github.com/forgo/lending/internal/model"
	"github.com/forgo/lending/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrBookNotFound):
		return model.NewNotFoundError("book")
	case errors.Is(err, service.ErrReservationNotFound):
		return model.NewNotFoundError("reservation")
	case errors.Is(err, service.ErrNotFound):
		return model.NewNotFoundError("resource")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrConflict):
		return model.NewConflictError(err.Error())

	// ===== Unavailable → 409 with its own code =====
	case errors.Is(err, service.ErrUnavailable):
		return model.NewUnavailableError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
