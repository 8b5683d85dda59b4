// Package errors defines the service-wide error taxonomy. Validation
// failures, build rejections, and the not-ready condition are distinct
// sentinel errors so callers can map them to HTTP status codes without
// string matching.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Validation errors: expected caller mistakes, reported synchronously,
	// never retried and never logged as faults.
	ErrEmptyQuery        = errors.New("query is empty")
	ErrQueryTooLong      = errors.New("query exceeds maximum length")
	ErrInvalidType       = errors.New("invalid search type")
	ErrInvalidPagination = errors.New("invalid pagination parameters")

	// Build errors: fatal to a single build attempt. The previous index,
	// if any, remains authoritative.
	ErrDuplicateDocument = errors.New("duplicate document id")
	ErrEmptyCorpus       = errors.New("corpus is empty")
	ErrMissingField      = errors.New("missing required field")

	// ErrNotReady signals that no index exists yet. Recoverable: the
	// caller should retry once the initial build completes.
	ErrNotReady = errors.New("search engine not ready")

	ErrRateLimited = errors.New("rate limit exceeded")
	ErrUpstream    = errors.New("upstream source error")
	ErrInternal    = errors.New("internal error")
)

// AppError pairs a sentinel error with a human-readable message and an
// explicit HTTP status code.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel error in an AppError with the given status and message.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf is New with printf-style message formatting.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status the presentation layer
// should return for it.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrEmptyQuery),
		errors.Is(err, ErrQueryTooLong),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidPagination):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateDocument),
		errors.Is(err, ErrEmptyCorpus),
		errors.Is(err, ErrMissingField):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsValidation reports whether err is one of the caller-input validation
// errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrQueryTooLong) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidPagination)
}
