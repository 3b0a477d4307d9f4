package types

import (
	"fmt"
	"unicode/utf8"
)

// GenerationRequest is the caller-facing request to produce suggestions.
type GenerationRequest struct {
	Mode        Mode   `json:"mode" validate:"required"`
	PrimaryText string `json:"primaryText" validate:"required"`
	Tone        string `json:"tone,omitempty"`
	LengthHint  *int   `json:"lengthHint,omitempty" validate:"omitempty,min=10"`
	ModelID     string `json:"modelId,omitempty"`
	RequesterID string `json:"requesterId,omitempty"`
}

// Validate checks the request before any profile lookup or model call.
// Length is counted in characters and the text is not trimmed.
func (r *GenerationRequest) Validate() error {
	if !r.Mode.Valid() {
		return &ValidationError{Field: "mode", Message: fmt.Sprintf("invalid mode selected: %q", r.Mode)}
	}
	if err := validateStruct(r); err != nil {
		return err
	}
	if utf8.RuneCountInString(r.PrimaryText) < MinPrimaryTextLength {
		return &ValidationError{
			Field:   "primaryText",
			Message: fmt.Sprintf("must be at least %d characters", MinPrimaryTextLength),
		}
	}
	return nil
}

// GenerationResult is the structured model output. Suggestions are returned verbatim.
type GenerationResult struct {
	Suggestions []string `json:"suggestions"`
}

// ImproveDraftRequest asks for a polished version of a draft.
type ImproveDraftRequest struct {
	Draft   string `json:"draft" validate:"required"`
	ModelID string `json:"model,omitempty"`
}

// Validate checks the draft length.
func (r *ImproveDraftRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if utf8.RuneCountInString(r.Draft) < MinDraftLength {
		return &ValidationError{Field: "draft", Message: fmt.Sprintf("must be at least %d characters", MinDraftLength)}
	}
	return nil
}

// RefineDraftRequest asks for a draft to be rewritten according to an instruction.
type RefineDraftRequest struct {
	CurrentDraft string `json:"currentDraft" validate:"required"`
	Instruction  string `json:"instruction" validate:"required"`
	ModelID      string `json:"model,omitempty"`
}

// Validate checks that both the draft and the instruction are present.
func (r *RefineDraftRequest) Validate() error {
	return validateStruct(r)
}

// RefinedDraft is the output of the improve and refine flows.
type RefinedDraft struct {
	RefinedDraft string `json:"refinedDraft"`
}

// SummarizeEmailRequest carries the email body to summarize.
type SummarizeEmailRequest struct {
	EmailBody string `json:"emailBody" validate:"required"`
	ModelID   string `json:"model,omitempty"`
}

// Validate checks that the email body is present.
func (r *SummarizeEmailRequest) Validate() error {
	return validateStruct(r)
}

// Summary is the output of the summarize flows.
type Summary struct {
	Summary string `json:"summary"`
}
