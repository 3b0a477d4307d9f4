package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/introbird/internal/generation"
	"github.com/jonathan/introbird/internal/server/middleware"
	"github.com/jonathan/introbird/internal/types"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Retryable *bool  `json:"retryable,omitempty"`
	Attempts  int    `json:"attempts,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var validationErr *types.ValidationError
	var generationErr *generation.GenerationError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, middleware.ErrNoUser):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, generation.ErrProfilesUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &generationErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// newErrorResponse builds the reply body for err. Internal errors are not echoed to clients.
func newErrorResponse(err error, status int) ErrorResponse {
	if status == http.StatusInternalServerError {
		return ErrorResponse{Error: "internal server error"}
	}

	resp := ErrorResponse{Error: err.Error()}

	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		resp.Field = validationErr.Field
	}

	var generationErr *generation.GenerationError
	if errors.As(err, &generationErr) {
		retryable := generationErr.Retryable
		resp.Retryable = &retryable
		resp.Attempts = generationErr.Attempts
	}
	return resp
}
