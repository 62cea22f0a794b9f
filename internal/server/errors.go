// Package server provides the HTTP REST API for the resume matcher.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/fetch"
	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates an optional backend the request needs is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not available: not configured", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		fieldErrs      validator.ValidationErrors
		unavailableErr *ErrUnavailable
		unsupportedErr *ingestion.UnsupportedTypeError
		extractionErr  *ingestion.ExtractionError
		fetchErr       *fetch.Error
		dbErr          *db.ValidationError
		tooLargeErr    *http.MaxBytesError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs), errors.As(err, &dbErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupportedErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		if fetchErr.InvalidTarget() {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch pipeline.KindOf(err) {
	case types.KindInput:
		return http.StatusBadRequest
	case types.KindConfiguration:
		return http.StatusServiceUnavailable
	case types.KindComputation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorKind classifies err for the "kind" field of error bodies. Engine errors keep their own
// kind; an unreachable job URL is the caller's input.
func errorKind(err error) types.ErrorKind {
	if kind := pipeline.KindOf(err); kind != types.KindInternal {
		return kind
	}
	var fetchErr *fetch.Error
	switch status := HTTPStatus(err); {
	case status == http.StatusServiceUnavailable:
		return types.KindConfiguration
	case status >= 400 && status < 500:
		return types.KindInput
	case errors.As(err, &fetchErr):
		return types.KindInput
	}
	return types.KindInternal
}

// errorMessage renders err for clients; validator errors become one line per field.
func errorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return "validation error: " + strings.Join(msgs, "; ")
}
