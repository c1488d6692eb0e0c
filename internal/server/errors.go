// Package server provides the HTTP REST API for comparing benchmark responses.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/respcompare/internal/compare"
	"github.com/jonathan/respcompare/internal/db"
)

// ErrNotFound indicates the requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound     *ErrNotFound
		validation   *ErrValidation
		fieldErrs    validator.ValidationErrors
		unknownMode  *compare.UnknownModeError
		tooLarge     *compare.InputTooLargeError
		bodyTooLarge *http.MaxBytesError
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &fieldErrs), errors.As(err, &unknownMode):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge), errors.As(err, &bodyTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
