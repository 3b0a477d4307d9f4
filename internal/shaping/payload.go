// Package shaping turns a generation request into a mode-specific payload for prompt rendering.
package shaping

import (
	"strconv"

	"github.com/jonathan/introbird/internal/types"
)

// Payload is the shaped input for one generation call. The set of implementations is closed:
// exactly one variant exists per mode, so the active mode is carried by the type itself.
type Payload interface {
	// Mode returns the mode this variant represents
	Mode() types.Mode
	// Text returns the user-supplied subject text
	Text() string
	// Shared returns the advisory options and personalization carried by all variants
	Shared() Extras
	isPayload()
}

// Options are the advisory generation hints from the request.
type Options struct {
	Tone       *string
	LengthHint *int
}

// Personalization holds the advisory profile fields. Absent fields stay nil.
type Personalization struct {
	DisplayName   *string
	Email         *string
	Address       *string
	Bio           *string
	ResumeSummary *string
}

// Extras groups the fields every variant carries.
type Extras struct {
	Options
	Personalization
}

// ReplyPayload asks for reply suggestions to a received email.
type ReplyPayload struct {
	EmailContent string
	Extras
}

// JobPostingPayload asks for a job posting email drafted from role details.
type JobPostingPayload struct {
	JobDetails string
	Extras
}

// ApplyToJobPayload asks for an application email answering a job posting.
type ApplyToJobPayload struct {
	JobPosting string
	Extras
}

// CasualInquiryPayload asks for casual message options about a described situation.
type CasualInquiryPayload struct {
	MessageContext string
	Extras
}

// RewritePayload asks for a rewritten version of free text.
type RewritePayload struct {
	SourceText string
	Extras
}

func (ReplyPayload) Mode() types.Mode         { return types.ModeReply }
func (JobPostingPayload) Mode() types.Mode    { return types.ModeJobPosting }
func (ApplyToJobPayload) Mode() types.Mode    { return types.ModeApplyToJob }
func (CasualInquiryPayload) Mode() types.Mode { return types.ModeCasualMessage }
func (RewritePayload) Mode() types.Mode       { return types.ModeRewriteMessage }

func (p ReplyPayload) Text() string         { return p.EmailContent }
func (p JobPostingPayload) Text() string    { return p.JobDetails }
func (p ApplyToJobPayload) Text() string    { return p.JobPosting }
func (p CasualInquiryPayload) Text() string { return p.MessageContext }
func (p RewritePayload) Text() string       { return p.SourceText }

func (p ReplyPayload) Shared() Extras         { return p.Extras }
func (p JobPostingPayload) Shared() Extras    { return p.Extras }
func (p ApplyToJobPayload) Shared() Extras    { return p.Extras }
func (p CasualInquiryPayload) Shared() Extras { return p.Extras }
func (p RewritePayload) Shared() Extras       { return p.Extras }

func (ReplyPayload) isPayload()         {}
func (JobPostingPayload) isPayload()    {}
func (ApplyToJobPayload) isPayload()    {}
func (CasualInquiryPayload) isPayload() {}
func (RewritePayload) isPayload()       {}

// newPayload builds the variant for mode. It reports false for a mode outside the closed set.
func newPayload(mode types.Mode, text string, extras Extras) (Payload, bool) {
	switch mode {
	case types.ModeReply:
		return ReplyPayload{EmailContent: text, Extras: extras}, true
	case types.ModeJobPosting:
		return JobPostingPayload{JobDetails: text, Extras: extras}, true
	case types.ModeApplyToJob:
		return ApplyToJobPayload{JobPosting: text, Extras: extras}, true
	case types.ModeCasualMessage:
		return CasualInquiryPayload{MessageContext: text, Extras: extras}, true
	case types.ModeRewriteMessage:
		return RewritePayload{SourceText: text, Extras: extras}, true
	default:
		return nil, false
	}
}

// Template variable names.
const (
	VarPrimaryText   = "PrimaryText"
	VarMode          = "Mode"
	VarTone          = "Tone"
	VarLengthHint    = "LengthHint"
	VarDisplayName   = "DisplayName"
	VarEmail         = "Email"
	VarAddress       = "Address"
	VarBio           = "Bio"
	VarResumeSummary = "ResumeSummary"
)

// Vars flattens a payload into template variables. Every mode flag is present, with exactly
// one set to "true". Optional fields appear only when present.
func Vars(p Payload) map[string]string {
	vars := map[string]string{
		VarPrimaryText: p.Text(),
		VarMode:        string(p.Mode()),
	}

	active, _ := types.LookupMode(p.Mode())
	for _, flag := range types.TemplateFlags() {
		vars[flag] = strconv.FormatBool(flag == active.TemplateFlag)
	}

	x := p.Shared()
	setIf := func(key string, v *string) {
		if v != nil {
			vars[key] = *v
		}
	}
	setIf(VarTone, x.Tone)
	if x.LengthHint != nil {
		vars[VarLengthHint] = strconv.Itoa(*x.LengthHint)
	}
	setIf(VarDisplayName, x.DisplayName)
	setIf(VarEmail, x.Email)
	setIf(VarAddress, x.Address)
	setIf(VarBio, x.Bio)
	setIf(VarResumeSummary, x.ResumeSummary)

	return vars
}

// HasPersonalization reports whether any profile field is present.
func (p Personalization) HasPersonalization() bool {
	return p.DisplayName != nil || p.Email != nil || p.Address != nil || p.Bio != nil || p.ResumeSummary != nil
}
