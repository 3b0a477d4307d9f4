package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/introbird/internal/llm"
	"github.com/jonathan/introbird/internal/schemas"
	"github.com/jonathan/introbird/internal/shaping"
	"github.com/jonathan/introbird/internal/types"
)

// Resume upload limits.
const (
	MaxResumeBytes = 10 << 20
	pdfMIMEType    = "application/pdf"
)

var pdfMagic = []byte("%PDF-")

// ProfileStore is the subset of profile storage the service needs.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*types.Profile, error)
	SaveProfile(ctx context.Context, userID string, update *types.Profile) (*types.Profile, error)
}

// Service is the caller-facing facade over shaping and invocation.
type Service struct {
	shaper   *shaping.Shaper
	invoker  *Invoker
	profiles ProfileStore
	logger   *zap.Logger
}

// NewService creates a service. profiles may be nil, in which case requests are never
// personalized and the profile operations return ErrProfilesUnavailable.
func NewService(invoker *Invoker, profiles ProfileStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	var reader shaping.ProfileReader
	if profiles != nil {
		reader = profiles
	}
	return &Service{
		shaper:   shaping.NewShaper(reader, logger),
		invoker:  invoker,
		profiles: profiles,
		logger:   logger.Named("service"),
	}
}

// GenerateSuggestions validates req, shapes it and invokes the generator.
func (s *Service) GenerateSuggestions(ctx context.Context, req types.GenerationRequest) (*types.GenerationResult, error) {
	return s.GenerateSuggestionsStream(ctx, req, nil)
}

// GenerateSuggestionsStream is GenerateSuggestions with retry progress reported to progress.
func (s *Service) GenerateSuggestionsStream(ctx context.Context, req types.GenerationRequest, progress ProgressFunc) (*types.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload, err := s.shaper.Shape(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Generating suggestions",
		zap.String("mode", string(req.Mode)),
		zap.String("model", s.model(req.ModelID)),
		zap.Bool("personalized", payload.Shared().HasPersonalization()),
	)
	return s.invoker.InvokeWithProgress(ctx, payload, req.ModelID, progress)
}

// ImproveDraft returns a polished version of req.Draft.
func (s *Service) ImproveDraft(ctx context.Context, req types.ImproveDraftRequest) (*types.RefinedDraft, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out types.RefinedDraft
	err := s.invoker.call(ctx, OpImproveDraft, TemplateImproveDraft,
		map[string]string{"Draft": req.Draft},
		Options{Model: req.ModelID, Output: llm.RefinedDraftSchema()},
		schemas.RefinedDraft, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RefineDraft rewrites req.CurrentDraft following req.Instruction.
func (s *Service) RefineDraft(ctx context.Context, req types.RefineDraftRequest) (*types.RefinedDraft, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out types.RefinedDraft
	err := s.invoker.call(ctx, OpRefineDraft, TemplateRefineDraft,
		map[string]string{"CurrentDraft": req.CurrentDraft, "Instruction": req.Instruction},
		Options{Model: req.ModelID, Output: llm.RefinedDraftSchema()},
		schemas.RefinedDraft, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SummarizeEmail returns a short summary of req.EmailBody.
func (s *Service) SummarizeEmail(ctx context.Context, req types.SummarizeEmailRequest) (*types.Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out types.Summary
	err := s.invoker.call(ctx, OpSummarizeEmail, TemplateSummarizeEmail,
		map[string]string{"EmailBody": req.EmailBody},
		Options{Model: req.ModelID, Output: llm.SummarySchema()},
		schemas.Summary, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SummarizeResume summarizes a PDF resume and stores the summary on the user's profile.
func (s *Service) SummarizeResume(ctx context.Context, userID string, pdf []byte, modelID string) (*types.Summary, error) {
	if s.profiles == nil {
		return nil, ErrProfilesUnavailable
	}
	if strings.TrimSpace(userID) == "" {
		return nil, &types.ValidationError{Field: "userId", Message: "is required"}
	}
	if err := checkPDF(pdf); err != nil {
		return nil, err
	}

	var out types.Summary
	err := s.invoker.call(ctx, OpSummarizeResume, TemplateSummarizeCV, nil,
		Options{
			Model:       modelID,
			Output:      llm.SummarySchema(),
			Attachments: []llm.Attachment{{MIMEType: pdfMIMEType, Data: pdf}},
		},
		schemas.Summary, &out, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize resume: %w", err)
	}

	if _, err := s.profiles.SaveProfile(ctx, userID, &types.Profile{ResumeSummaryText: types.StringPtr(out.Summary)}); err != nil {
		return nil, fmt.Errorf("failed to save resume summary: %w", err)
	}

	s.logger.Info("Resume summary saved", zap.String("userID", userID), zap.Int("summaryLength", len(out.Summary)))
	return &out, nil
}

func checkPDF(pdf []byte) error {
	switch {
	case len(pdf) == 0:
		return &types.ValidationError{Field: "file", Message: "no resume file provided"}
	case len(pdf) > MaxResumeBytes:
		return &types.ValidationError{Field: "file", Message: fmt.Sprintf("resume exceeds %d bytes", MaxResumeBytes)}
	case !bytes.HasPrefix(pdf, pdfMagic):
		return &types.ValidationError{Field: "file", Message: "only PDF resumes are supported"}
	}
	return nil
}

// GetProfile returns the user's profile, or an empty profile when none is stored.
func (s *Service) GetProfile(ctx context.Context, userID string) (*types.Profile, error) {
	if s.profiles == nil {
		return nil, ErrProfilesUnavailable
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, types.ErrProfileNotFound) || (err == nil && p == nil) {
		return &types.Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

// UpdateProfile validates update and merges it into the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update *types.Profile) (*types.Profile, error) {
	if s.profiles == nil {
		return nil, ErrProfilesUnavailable
	}
	if update == nil {
		update = &types.Profile{}
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	p, err := s.profiles.SaveProfile(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return p, nil
}

func (s *Service) model(requested string) string {
	if strings.TrimSpace(requested) == "" {
		return s.invoker.DefaultModel()
	}
	return requested
}
