package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Map converts a service error into an HTTP status and a stable machine
// code. Keeps handlers clean by centralizing the status taxonomy:
// validation -> 400, missing data -> 404, quota -> 429, everything else
// (including infrastructure faults) -> 500.
func Map(err error) (status int, code string) {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		incomplete *IncompleteProfileError
		invalid    *InvalidChoiceError
		quota      *QuotaExceededError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "validation_error"

	case errors.As(err, &notFound):
		return http.StatusNotFound, "not_found"

	case errors.As(err, &incomplete):
		return http.StatusNotFound, "incomplete_profile"

	case errors.As(err, &invalid):
		return http.StatusNotFound, "invalid_choice"

	case errors.As(err, &quota):
		return http.StatusTooManyRequests, "quota_exceeded"

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"

	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
