// Package generation invokes the text-generation capability with a bounded retry policy
// and exposes the caller-facing suggestion, draft and summary operations.
package generation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrProfilesUnavailable is returned by profile operations when no store is configured.
var ErrProfilesUnavailable = errors.New("profile storage is not configured")

// GenerationError is the terminal failure of a generation operation.
// Retryable is true when every attempt failed with a transient error and the budget ran out;
// false means the last failure was fatal and no further attempt was made.
type GenerationError struct {
	Operation string
	Attempts  int
	Retryable bool
	Cause     error
}

func (e *GenerationError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("%s failed after %d attempts: %v", e.Operation, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// IsRetryExhausted reports whether err is a GenerationError raised after all attempts failed transiently.
func IsRetryExhausted(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Retryable
}

// IsFatal reports whether err is a GenerationError raised by a non-retryable failure.
func IsFatal(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && !ge.Retryable
}

// DecodeError means the model answered but the answer does not match the expected output shape.
type DecodeError struct {
	Schema string
	Raw    string
	Cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("response does not match %s schema: %v", e.Schema, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// retryablePatterns are matched case-insensitively against the error message.
var retryablePatterns = []string{"503", "overload", "service unavailable"}

// IsRetryable classifies an attempt failure as transient.
// Decode failures are never retryable. Structured transport codes are checked first,
// then the message is matched against retryablePatterns.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return false
	}

	if status.Code(err) == codes.Unavailable {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusServiceUnavailable {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusServiceUnavailable {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
