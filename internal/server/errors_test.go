package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jonathan/talent-match/internal/matching"
	"github.com/jonathan/talent-match/internal/schemas"
	"github.com/jonathan/talent-match/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "limit", Message: "must be a non-negative integer"}
	assert.Equal(t, "validation error: limit - must be a non-negative integer", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{}

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "not found", err: &types.NotFoundError{Kind: types.KindJob, ID: "x"}, expected: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", &types.NotFoundError{Kind: types.KindCandidate, ID: "x"}), expected: http.StatusNotFound},
		{name: "extraction", err: &types.ExtractionError{RecordID: "x", Message: "bad"}, expected: http.StatusUnprocessableEntity},
		{name: "dependency timeout", err: &types.DependencyTimeoutError{Dependency: "gemini", Timeout: time.Second}, expected: http.StatusServiceUnavailable},
		{name: "incompatible features", err: fmt.Errorf("rank: %w", &types.IncompatibleFeatureError{Want: 256, Got: 768}), expected: http.StatusConflict},
		{name: "deadline", err: context.DeadlineExceeded, expected: http.StatusServiceUnavailable},
		{name: "invalid filter", err: fmt.Errorf("%w: min > max", matching.ErrInvalidFilter), expected: http.StatusBadRequest},
		{name: "self comparison", err: matching.ErrSelfComparison, expected: http.StatusBadRequest},
		{name: "schema validation", err: &schemas.ValidationError{}, expected: http.StatusBadRequest},
		{name: "json syntax", err: syntaxErr, expected: http.StatusBadRequest},
		{name: "credentials", err: &ErrInvalidCredentials{}, expected: http.StatusUnauthorized},
		{name: "body too large", err: &http.MaxBytesError{Limit: 10}, expected: http.StatusRequestEntityTooLarge},
		{name: "unknown error", err: assert.AnError, expected: http.StatusInternalServerError},
		{name: "nil error", err: nil, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestNewErrorBody(t *testing.T) {
	body := newErrorBody(&schemas.ValidationError{Errors: []schemas.FieldError{{Field: "title", Message: "required"}}}, http.StatusBadRequest)
	assert.Equal(t, "validation failed", body.Error)
	assert.Len(t, body.Fields, 1)

	mismatch := &types.IncompatibleFeatureError{Want: 256, Got: 768}
	body = newErrorBody(mismatch, HTTPStatus(mismatch))
	assert.Equal(t, mismatch.Error(), body.Error)

	body = newErrorBody(fmt.Errorf("connection refused to 10.0.0.3"), http.StatusInternalServerError)
	assert.Equal(t, "internal server error", body.Error)
}
