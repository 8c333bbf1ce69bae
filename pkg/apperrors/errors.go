package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrNotImplemented = errors.New("not implemented")
	ErrValidation     = errors.New("validation failed")
	ErrAuthRequired   = errors.New("authentication required")
	ErrInvalidToken   = errors.New("invalid token")
)

// Wire-level error codes returned in the command envelope.
// Callers branch on these codes alone; raw store errors never cross the boundary.
const (
	CodeAuthRequired   = "AUTH_REQUIRED"
	CodeInvalidToken   = "INVALID_TOKEN"
	CodeUnknownEntity  = "UNKNOWN_ENTITY"
	CodeUnknownAction  = "UNKNOWN_ACTION"
	CodeNotFound       = "NOT_FOUND"
	CodeWorkerError    = "WORKER_ERROR"
	CodeNotImplemented = "NOT_IMPLEMENTED"
	CodeInternalError  = "INTERNAL_ERROR"
)

// HTTPStatus maps an envelope error code to a transport status code.
// Domain failures are 400-class, auth failures 401, router faults 500.
func HTTPStatus(code string) int {
	switch code {
	case "":
		return http.StatusOK
	case CodeAuthRequired, CodeInvalidToken:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnknownEntity, CodeUnknownAction, CodeNotImplemented:
		return http.StatusBadRequest
	case CodeWorkerError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// CodeForError maps a handler error to its envelope error code.
func CodeForError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNotImplemented):
		return CodeNotImplemented
	default:
		return CodeWorkerError
	}
}
