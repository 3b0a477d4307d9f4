// Package types provides type definitions for structured data used throughout the introbird system.
package types

import (
	"fmt"
	"strings"
)

// Mode is the closed category of generation task selected by the user.
type Mode string

// Mode constants. The string values are the wire ids used by the web UI.
const (
	ModeReply          Mode = "reply"
	ModeJobPosting     Mode = "jobPosting"
	ModeApplyToJob     Mode = "applyToJob"
	ModeCasualMessage  Mode = "casualMessage"
	ModeRewriteMessage Mode = "rewriteMessage"
)

// ResultShape describes how many suggestions a mode conventionally returns.
type ResultShape string

const (
	// ShapeSingle modes produce one composed artifact.
	ShapeSingle ResultShape = "single"
	// ShapeMulti modes produce several alternatives.
	ShapeMulti ResultShape = "multi"
)

// Input length floors shared by the API and the UI.
const (
	MinPrimaryTextLength = 10
	MinDraftLength       = 5
	MinLengthHint        = 10
	MaxBioLength         = 5000
)

// ModeSpec is one row of the mode table.
type ModeSpec struct {
	Mode                Mode        `json:"mode"`
	Label               string      `json:"label"`
	TemplateFlag        string      `json:"templateFlag"`
	Shape               ResultShape `json:"shape"`
	ExpectedSuggestions int         `json:"expectedSuggestions"`
	MinInputLength      int         `json:"minInputLength"`
	ResultTitle         string      `json:"resultTitle"`
}

// modeTable is the single source of truth for the supported modes.
var modeTable = []ModeSpec{
	{
		Mode:                ModeReply,
		Label:               "Reply to Email",
		TemplateFlag:        "isReplyMode",
		Shape:               ShapeMulti,
		ExpectedSuggestions: 3,
		MinInputLength:      MinPrimaryTextLength,
		ResultTitle:         "Suggestion",
	},
	{
		Mode:                ModeJobPosting,
		Label:               "Draft Job Posting",
		TemplateFlag:        "isJobPostingMode",
		Shape:               ShapeSingle,
		ExpectedSuggestions: 1,
		MinInputLength:      MinPrimaryTextLength,
		ResultTitle:         "Job Posting Draft",
	},
	{
		Mode:                ModeApplyToJob,
		Label:               "Apply to Job",
		TemplateFlag:        "isApplyToJobMode",
		Shape:               ShapeSingle,
		ExpectedSuggestions: 1,
		MinInputLength:      MinPrimaryTextLength,
		ResultTitle:         "Application Email Draft",
	},
	{
		Mode:                ModeCasualMessage,
		Label:               "Casual Job Inquiry",
		TemplateFlag:        "isCasualMessageMode",
		Shape:               ShapeMulti,
		ExpectedSuggestions: 3,
		MinInputLength:      MinPrimaryTextLength,
		ResultTitle:         "Casual Inquiry Option",
	},
	{
		Mode:                ModeRewriteMessage,
		Label:               "Rewrite Text",
		TemplateFlag:        "isRewriteMessageMode",
		Shape:               ShapeSingle,
		ExpectedSuggestions: 1,
		MinInputLength:      MinPrimaryTextLength,
		ResultTitle:         "Rewritten Text",
	},
}

// ToneOptions are the tone tags offered by the UI. Tone input stays free-form.
var ToneOptions = []string{
	"formal",
	"casual",
	"friendly",
	"professional",
	"concise",
	"detailed",
	"confident",
	"empathetic",
	"humorous",
	"urgent",
}

// Modes returns a copy of the mode table in display order.
func Modes() []ModeSpec {
	out := make([]ModeSpec, len(modeTable))
	copy(out, modeTable)
	return out
}

// LookupMode returns the table row for m.
func LookupMode(m Mode) (ModeSpec, bool) {
	for _, spec := range modeTable {
		if spec.Mode == m {
			return spec, true
		}
	}
	return ModeSpec{}, false
}

// Valid reports whether m is part of the closed mode set.
func (m Mode) Valid() bool {
	_, ok := LookupMode(m)
	return ok
}

// ParseMode converts a wire id into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.TrimSpace(s))
	if !m.Valid() {
		return "", &ValidationError{Field: "mode", Message: fmt.Sprintf("invalid mode selected: %q", s)}
	}
	return m, nil
}

// TemplateFlags returns every mode flag name in table order.
func TemplateFlags() []string {
	flags := make([]string, len(modeTable))
	for i, spec := range modeTable {
		flags[i] = spec.TemplateFlag
	}
	return flags
}
