// Package server provides the HTTP API for suggestion generation, drafts, summaries and profiles.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/introbird/internal/generation"
	"github.com/jonathan/introbird/internal/llm"
	"github.com/jonathan/introbird/internal/server/middleware"
	"github.com/jonathan/introbird/internal/server/ratelimit"
	"github.com/jonathan/introbird/internal/types"
)

// Service is the generation and profile API the handlers call.
type Service interface {
	GenerateSuggestions(ctx context.Context, req types.GenerationRequest) (*types.GenerationResult, error)
	GenerateSuggestionsStream(ctx context.Context, req types.GenerationRequest, progress generation.ProgressFunc) (*types.GenerationResult, error)
	ImproveDraft(ctx context.Context, req types.ImproveDraftRequest) (*types.RefinedDraft, error)
	RefineDraft(ctx context.Context, req types.RefineDraftRequest) (*types.RefinedDraft, error)
	SummarizeEmail(ctx context.Context, req types.SummarizeEmailRequest) (*types.Summary, error)
	SummarizeResume(ctx context.Context, userID string, pdf []byte, modelID string) (*types.Summary, error)
	GetProfile(ctx context.Context, userID string) (*types.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update *types.Profile) (*types.Profile, error)
}

var _ Service = (*generation.Service)(nil)

// Options configures a Server.
type Options struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	Models          *llm.Config
	RateLimit       *ratelimit.Config
	Registry        *prometheus.Registry
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	service         Service
	auth            middleware.TokenValidator
	models          *llm.Config
	rateLimiter     *ratelimit.Limiter
	registry        *prometheus.Registry
	metrics         *httpMetrics
	allowedOrigins  []string
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// New creates a server. auth may be nil, in which case every request is anonymous and
// the profile endpoints answer 401.
func New(service Service, auth middleware.TokenValidator, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Models == nil {
		opts.Models = llm.DefaultConfig()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		service:         service,
		auth:            auth,
		models:          opts.Models,
		rateLimiter:     ratelimit.NewLimiter(opts.RateLimit),
		registry:        opts.Registry,
		metrics:         newHTTPMetrics(opts.Registry),
		allowedOrigins:  opts.AllowedOrigins,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          logger.Named("http"),
	}

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Three attempts of up to a minute each plus the delays between them.
		WriteTimeout: 4 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	optional := middleware.OptionalAuth(s.auth)
	required := middleware.RequireAuth(s.auth)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	mux.HandleFunc("GET /modes", s.handleModes)

	mux.Handle("POST /generate", optional(http.HandlerFunc(s.handleGenerate)))
	mux.Handle("POST /generate/stream", optional(http.HandlerFunc(s.handleGenerateStream)))
	mux.Handle("POST /drafts/improve", optional(http.HandlerFunc(s.handleImproveDraft)))
	mux.Handle("POST /drafts/refine", optional(http.HandlerFunc(s.handleRefineDraft)))
	mux.Handle("POST /emails/summarize", optional(http.HandlerFunc(s.handleSummarizeEmail)))

	mux.Handle("GET /profile", required(http.HandlerFunc(s.handleGetProfile)))
	mux.Handle("PUT /profile", required(http.HandlerFunc(s.handleUpdateProfile)))
	mux.Handle("POST /profile/resume", required(http.HandlerFunc(s.handleUploadResume)))

	return s.withRateLimit(s.withRequestID(s.withLogging(s.withCORS(s.withMetrics(mux)))))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		defer s.rateLimiter.Stop()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("Server stopped")
		return nil
	})

	return g.Wait()
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("Error encoding JSON response", zap.Error(err))
	}
}

// errorResponse maps err to a status code and writes the error body.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("requestID", RequestID(r.Context())),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	resp := newErrorResponse(err, status)
	resp.RequestID = RequestID(r.Context())
	s.jsonResponse(w, status, resp)
}
