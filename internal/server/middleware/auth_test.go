package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	validTokens map[string]string
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]string)}
}

func (v *testTokenValidator) ValidateToken(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token string is empty")
	}
	userID, ok := v.validTokens[token]
	if !ok {
		return "", fmt.Errorf("invalid token")
	}
	return userID, nil
}

// echoUser writes the context user id, or "anonymous".
func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserID(r)
		if err != nil {
			userID = "anonymous"
		}
		_, _ = w.Write([]byte(userID))
	})
}

func TestRequireAuth(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["good-token"] = "user-123"
	handler := RequireAuth(validator)(echoUser())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer good-token", http.StatusOK, "user-123"},
		{"lower case scheme", "bearer good-token", http.StatusOK, "user-123"},
		{"missing header", "", http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"wrong scheme", "Basic good-token", http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"no token", "Bearer", http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"extra parts", "Bearer good-token extra", http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"invalid token", "Bearer bad-token", http.StatusUnauthorized, `{"error":"unauthorized"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireAuth_NilValidator(t *testing.T) {
	handler := RequireAuth(nil)(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["good-token"] = "user-123"
	handler := OptionalAuth(validator)(echoUser())

	tests := []struct {
		name     string
		header   string
		wantBody string
	}{
		{"valid token", "Bearer good-token", "user-123"},
		{"no header", "", "anonymous"},
		{"invalid token", "Bearer bad-token", "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/generate", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestTokenValidatorFunc(t *testing.T) {
	v := TokenValidatorFunc(func(_ context.Context, token string) (string, error) {
		return "u-" + token, nil
	})
	userID, err := v.ValidateToken(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	_, ok = UserID(WithUserID(context.Background(), ""))
	assert.False(t, ok)

	userID, ok := UserID(WithUserID(context.Background(), "user-1"))
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	_, err := GetUserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoUser)
}
