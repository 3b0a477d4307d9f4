// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// userIDKey is the context key for storing the authenticated user ID.
const userIDKey ContextKey = "userID"

// ErrNoUser is returned when the request carries no authenticated user.
var ErrNoUser = errors.New("user ID not found in request context")

// TokenValidator verifies a bearer token and returns the user id it was issued for.
// Implemented by the Firebase ID-token verifier and the local JWT service.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(ctx context.Context, token string) (string, error)

// ValidateToken calls f.
func (f TokenValidatorFunc) ValidateToken(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// RequireAuth rejects requests without a valid bearer token and stores the user id in the context.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := authenticate(r, validator)
			if !ok {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth stores the user id when a valid token is present. Requests with a missing or
// invalid token continue anonymously.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := authenticate(r, validator); ok {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, validator TokenValidator) (string, bool) {
	if validator == nil {
		return "", false
	}
	token, ok := BearerToken(r)
	if !ok {
		return "", false
	}
	userID, err := validator.ValidateToken(r.Context(), token)
	if err != nil || userID == "" {
		return "", false
	}
	return userID, true
}

// BearerToken extracts the token from a "Bearer <token>" Authorization header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}

// WithUserID returns a context carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID extracts the authenticated user ID from the context.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (string, error) {
	userID, ok := UserID(r.Context())
	if !ok {
		return "", ErrNoUser
	}
	return userID, nil
}
