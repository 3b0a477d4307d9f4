package server

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"github.com/jonathan/introbird/internal/server/middleware"
)

// IDTokenVerifier is the subset of *auth.Client used to verify Firebase ID tokens.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseValidator validates Firebase ID tokens issued to signed-in users.
type FirebaseValidator struct {
	verifier IDTokenVerifier
}

var _ middleware.TokenValidator = (*FirebaseValidator)(nil)

// NewFirebaseValidator creates a validator over a Firebase auth client.
func NewFirebaseValidator(verifier IDTokenVerifier) *FirebaseValidator {
	return &FirebaseValidator{verifier: verifier}
}

// ValidateToken verifies the ID token and returns the Firebase user id.
func (v *FirebaseValidator) ValidateToken(ctx context.Context, token string) (string, error) {
	decoded, err := v.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("invalid firebase ID token: %w", err)
	}
	if decoded.UID == "" {
		return "", fmt.Errorf("firebase ID token has no uid")
	}
	return decoded.UID, nil
}
