package shaping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/introbird/internal/types"
)

// ProfileReader is the read side of the profile store.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*types.Profile, error)
}

// LookupStatus is the outcome of a profile lookup.
type LookupStatus int

const (
	// LookupSkipped means no requester id was given or no store is configured
	LookupSkipped LookupStatus = iota
	// LookupFound means a profile was returned
	LookupFound
	// LookupNotFound means the requester has no stored profile
	LookupNotFound
	// LookupFailed means the store returned an error
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupSkipped:
		return "skipped"
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	case LookupFailed:
		return "failed"
	default:
		return fmt.Sprintf("LookupStatus(%d)", int(s))
	}
}

// ProfileLookup is the explicit result of fetching a requester's profile.
// Profile is non-nil only when Status is LookupFound; Err is set only when Status is LookupFailed.
type ProfileLookup struct {
	Status  LookupStatus
	Profile *types.Profile
	Err     *ProfileLookupError
}

// ProfileLookupError records a failed profile fetch. It is logged, never returned to callers of Shape.
type ProfileLookupError struct {
	UserID string
	Cause  error
}

func (e *ProfileLookupError) Error() string {
	return fmt.Sprintf("profile lookup for %q failed: %v", e.UserID, e.Cause)
}

func (e *ProfileLookupError) Unwrap() error {
	return e.Cause
}

// Shaper assembles payloads from requests.
type Shaper struct {
	profiles ProfileReader
	logger   *zap.Logger
}

// NewShaper creates a shaper. profiles may be nil, which disables personalization.
func NewShaper(profiles ProfileReader, logger *zap.Logger) *Shaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shaper{profiles: profiles, logger: logger.Named("shaper")}
}

// LookupProfile fetches the requester's profile without ever failing.
func (s *Shaper) LookupProfile(ctx context.Context, requesterID string) ProfileLookup {
	if strings.TrimSpace(requesterID) == "" || s.profiles == nil {
		return ProfileLookup{Status: LookupSkipped}
	}

	p, err := s.profiles.GetProfile(ctx, requesterID)
	switch {
	case err == nil && p != nil:
		return ProfileLookup{Status: LookupFound, Profile: p}
	case err == nil, errors.Is(err, types.ErrProfileNotFound):
		return ProfileLookup{Status: LookupNotFound}
	default:
		return ProfileLookup{Status: LookupFailed, Err: &ProfileLookupError{UserID: requesterID, Cause: err}}
	}
}

// Shape builds the mode variant for req. It fails only with a *types.ValidationError for an unknown mode.
// Profile lookup failures degrade to an unpersonalized payload.
func (s *Shaper) Shape(ctx context.Context, req types.GenerationRequest) (Payload, error) {
	if !req.Mode.Valid() {
		return nil, &types.ValidationError{Field: "mode", Message: fmt.Sprintf("invalid mode selected: %q", req.Mode)}
	}

	extras := Extras{Options: optionsFrom(req)}

	lookup := s.LookupProfile(ctx, req.RequesterID)
	switch lookup.Status {
	case LookupFound:
		extras.Personalization = personalizationFrom(lookup.Profile)
	case LookupNotFound:
		s.logger.Debug("No profile for requester", zap.String("requesterID", req.RequesterID))
	case LookupFailed:
		s.logger.Warn("Profile lookup failed, continuing without personalization",
			zap.String("requesterID", req.RequesterID),
			zap.Error(lookup.Err),
		)
	case LookupSkipped:
	}

	payload, ok := newPayload(req.Mode, req.PrimaryText, extras)
	if !ok {
		return nil, &types.ValidationError{Field: "mode", Message: fmt.Sprintf("invalid mode selected: %q", req.Mode)}
	}
	return payload, nil
}

func optionsFrom(req types.GenerationRequest) Options {
	var opts Options
	if strings.TrimSpace(req.Tone) != "" {
		tone := req.Tone
		opts.Tone = &tone
	}
	if req.LengthHint != nil {
		hint := *req.LengthHint
		opts.LengthHint = &hint
	}
	return opts
}

func personalizationFrom(p *types.Profile) Personalization {
	return Personalization{
		DisplayName:   p.DisplayName(),
		Email:         present(p.Email),
		Address:       present(p.Address),
		Bio:           present(p.BioText),
		ResumeSummary: present(p.ResumeSummaryText),
	}
}

// present copies v, treating blank strings as absent.
func present(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	s := *v
	return &s
}
