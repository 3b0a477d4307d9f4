// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/jonathan/introbird/internal/llm"
)

// Profile storage backends.
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Authentication modes.
const (
	AuthNone     = "none"
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

// Config holds the process configuration. Values come from defaults, then an optional JSON
// file, then environment variables, each layer overriding the previous one.
// Durations are environment-only.
type Config struct {
	// Server
	Port            int           `envconfig:"PORT" json:"port,omitempty"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" json:"allowed_origins,omitempty"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" json:"-"`

	// Logging
	LogLevel    string `envconfig:"LOG_LEVEL" json:"log_level,omitempty"`
	LogEncoding string `envconfig:"LOG_ENCODING" json:"log_encoding,omitempty"`
	LogOutput   string `envconfig:"LOG_OUTPUT" json:"log_output,omitempty"`

	// Generation
	GeminiAPIKey     string        `envconfig:"GEMINI_API_KEY" json:"gemini_api_key,omitempty"`
	OpenAIAPIKey     string        `envconfig:"OPENAI_API_KEY" json:"openai_api_key,omitempty"`
	OpenAIBaseURL    string        `envconfig:"OPENAI_BASE_URL" json:"openai_base_url,omitempty"`
	DefaultModel     string        `envconfig:"DEFAULT_MODEL" json:"default_model,omitempty"`
	RetryMaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" json:"retry_max_attempts,omitempty"`
	RetryDelay       time.Duration `envconfig:"RETRY_DELAY" json:"-"`
	AttemptTimeout   time.Duration `envconfig:"ATTEMPT_TIMEOUT" json:"-"`

	// Profiles
	ProfileBackend      string        `envconfig:"PROFILE_BACKEND" json:"profile_backend,omitempty"`
	FirebaseProjectID   string        `envconfig:"FIREBASE_PROJECT_ID" json:"firebase_project_id,omitempty"`
	CredentialsFile     string        `envconfig:"GOOGLE_APPLICATION_CREDENTIALS" json:"credentials_file,omitempty"`
	FirestoreCollection string        `envconfig:"FIRESTORE_COLLECTION" json:"firestore_collection,omitempty"`
	DatabaseURL         string        `envconfig:"DATABASE_URL" json:"database_url,omitempty"`
	RedisURL            string        `envconfig:"REDIS_URL" json:"redis_url,omitempty"`
	ProfileCacheTTL     time.Duration `envconfig:"PROFILE_CACHE_TTL" json:"-"`

	// Auth
	AuthMode string `envconfig:"AUTH_MODE" json:"auth_mode,omitempty"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Port:                8080,
		AllowedOrigins:      []string{"*"},
		ShutdownTimeout:     30 * time.Second,
		LogLevel:            "info",
		LogEncoding:         "json",
		LogOutput:           "stderr",
		DefaultModel:        llm.DefaultModelID,
		RetryMaxAttempts:    3,
		RetryDelay:          2 * time.Second,
		AttemptTimeout:      60 * time.Second,
		ProfileBackend:      BackendMemory,
		FirestoreCollection: "userProfiles",
		ProfileCacheTTL:     5 * time.Minute,
		AuthMode:            AuthNone,
	}
}

// Load builds the configuration from defaults, the JSON file at path (optional) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads a JSON configuration file on top of the defaults, without the environment.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Unmarshal onto the existing values so absent keys keep their defaults.
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("config error: 'retry_max_attempts' must be at least 1")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("config error: RETRY_DELAY must be non-negative")
	}
	if c.AttemptTimeout < 0 {
		return fmt.Errorf("config error: ATTEMPT_TIMEOUT must be non-negative")
	}
	if _, _, err := llm.SplitModelID(c.DefaultModel); err != nil {
		return fmt.Errorf("config error: 'default_model': %w", err)
	}

	switch c.ProfileBackend {
	case BackendMemory:
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("config error: 'firebase_project_id' is required for the firestore profile backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres profile backend")
		}
	default:
		return fmt.Errorf("config error: unknown profile backend %q (want %s, %s or %s)",
			c.ProfileBackend, BackendMemory, BackendFirestore, BackendPostgres)
	}

	switch c.AuthMode {
	case AuthNone, AuthJWT:
	case AuthFirebase:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("config error: 'firebase_project_id' is required for firebase auth")
		}
	default:
		return fmt.Errorf("config error: unknown auth mode %q (want %s, %s or %s)",
			c.AuthMode, AuthNone, AuthFirebase, AuthJWT)
	}

	return nil
}

// HasGenerationKey reports whether at least one model provider is configured.
func (c *Config) HasGenerationKey() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != "" || strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// NeedsFirebase reports whether a Firebase app must be initialized.
func (c *Config) NeedsFirebase() bool {
	return c.ProfileBackend == BackendFirestore || c.AuthMode == AuthFirebase
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
