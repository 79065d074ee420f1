// Package server provides the HTTP REST API for the matching engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/talent-match/internal/matching"
	"github.com/jonathan/talent-match/internal/schemas"
	"github.com/jonathan/talent-match/internal/types"
)

// ErrInvalidCredentials indicates an unknown client or a wrong secret
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid client credentials"
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
		notFound    *types.NotFoundError
		extraction  *types.ExtractionError
		timeout     *types.DependencyTimeoutError
		mismatch    *types.IncompatibleFeatureError
		schemaErr   *schemas.ValidationError
		validation  *ErrValidation
		credentials *ErrInvalidCredentials
		fieldErrs   validator.ValidationErrors
		syntaxErr   *json.SyntaxError
		maxBytesErr *http.MaxBytesError
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &credentials):
		return http.StatusUnauthorized
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity
	case errors.As(err, &mismatch):
		return http.StatusConflict
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, matching.ErrInvalidFilter),
		errors.Is(err, matching.ErrSelfComparison),
		errors.As(err, &schemaErr),
		errors.As(err, &validation),
		errors.As(err, &fieldErrs),
		errors.As(err, &syntaxErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error  string                `json:"error"`
	Fields []schemas.FieldError `json:"fields,omitempty"`
}

func newErrorBody(err error, status int) errorBody {
	body := errorBody{Error: err.Error()}
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		body.Error = "validation failed"
		body.Fields = schemaErr.Errors
	}
	// Internal details are not exposed
	if status == http.StatusInternalServerError {
		body.Error = "internal server error"
	}
	return body
}
