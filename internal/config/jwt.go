package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// JWTConfig holds configuration for locally issued JWT tokens.
type JWTConfig struct {
	Secret          string `envconfig:"JWT_SECRET"`
	ExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`
	Issuer          string `envconfig:"JWT_ISSUER" default:"introbird"`
}

// NewJWTConfig creates a JWT configuration from environment variables.
// It reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default: 24) and JWT_ISSUER.
func NewJWTConfig() (*JWTConfig, error) {
	var cfg JWTConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid JWT configuration: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
