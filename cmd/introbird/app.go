package main

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/jonathan/introbird/internal/config"
	"github.com/jonathan/introbird/internal/db"
	"github.com/jonathan/introbird/internal/generation"
	"github.com/jonathan/introbird/internal/llm"
	"github.com/jonathan/introbird/internal/logging"
	"github.com/jonathan/introbird/internal/profile"
	"github.com/jonathan/introbird/internal/server"
	"github.com/jonathan/introbird/internal/server/middleware"
)

// app holds the wired components shared by every command.
type app struct {
	config   *config.Config
	logger   *zap.Logger
	models   *llm.Config
	registry *prometheus.Registry
	service  *generation.Service
	auth     middleware.TokenValidator
	closers  []func() error
}

// loadConfig reads the config file named by --config and the environment.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(logging.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutput,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newApp connects the model providers, the profile store and the token validator.
// On error every component opened so far is closed.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *app, err error) {
	if !cfg.HasGenerationKey() {
		return nil, fmt.Errorf("no model provider configured: set GEMINI_API_KEY or OPENAI_API_KEY")
	}

	a := &app{
		config:   cfg,
		logger:   logger,
		models:   llm.DefaultConfig().WithDefaultModel(cfg.DefaultModel),
		registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := llm.NewClient(ctx, a.models, cfg.GeminiAPIKey, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	var fbApp *firebase.App
	if cfg.NeedsFirebase() {
		fbApp, err = newFirebaseApp(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	store, err := a.openProfileStore(ctx, fbApp)
	if err != nil {
		return nil, err
	}

	a.auth, err = newTokenValidator(ctx, cfg, fbApp)
	if err != nil {
		return nil, err
	}

	retrier := generation.NewRetrier(
		generation.RetryPolicy{
			MaxAttempts:    cfg.RetryMaxAttempts,
			Delay:          cfg.RetryDelay,
			AttemptTimeout: cfg.AttemptTimeout,
		},
		logger,
		generation.WithMetrics(generation.NewMetrics(a.registry)),
	)
	invoker := generation.NewInvoker(generation.NewLLMGenerator(client), retrier, a.models.DefaultModel)
	a.service = generation.NewService(invoker, store, logger)

	logger.Info("Application initialized",
		zap.String("defaultModel", a.models.DefaultModel),
		zap.String("profileBackend", cfg.ProfileBackend),
		zap.Bool("profileCache", cfg.RedisURL != ""),
		zap.String("authMode", cfg.AuthMode),
	)
	return a, nil
}

func newFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase: %w", err)
	}
	return fbApp, nil
}

// openProfileStore opens the configured backend, wrapped in the Redis cache when REDIS_URL is set.
func (a *app) openProfileStore(ctx context.Context, fbApp *firebase.App) (profile.Store, error) {
	var store profile.Store

	switch a.config.ProfileBackend {
	case config.BackendFirestore:
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		fs := profile.NewFirestoreStore(client, a.config.FirestoreCollection)
		a.closers = append(a.closers, fs.Close)
		store = fs
	case config.BackendPostgres:
		database, err := db.Connect(ctx, a.config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { database.Close(); return nil })
		if err := database.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = database
	default:
		store = profile.NewMemoryStore()
	}

	if a.config.RedisURL != "" {
		rc, err := profile.NewRedisClient(ctx, a.config.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc.Close)
		store = profile.NewCachedStore(store, rc, a.config.ProfileCacheTTL, a.logger)
	}
	return store, nil
}

func newTokenValidator(ctx context.Context, cfg *config.Config, fbApp *firebase.App) (middleware.TokenValidator, error) {
	switch cfg.AuthMode {
	case config.AuthFirebase:
		client, err := fbApp.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
		}
		return server.NewFirebaseValidator(client), nil
	case config.AuthJWT:
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return nil, err
		}
		return server.NewJWTService(jwtCfg), nil
	default:
		return nil, nil
	}
}

// Close releases the components in reverse order of creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
