package types

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Profile holds the optional personalization data for a user.
// Every field may be absent; absence never blocks generation.
type Profile struct {
	FirstName         *string `json:"firstName,omitempty" firestore:"firstName,omitempty"`
	LastName          *string `json:"lastName,omitempty" firestore:"lastName,omitempty"`
	Email             *string `json:"email,omitempty" firestore:"email,omitempty"`
	Address           *string `json:"address,omitempty" firestore:"address,omitempty"`
	BioText           *string `json:"bioText,omitempty" firestore:"bioText,omitempty"`
	ResumeSummaryText *string `json:"resumeSummaryText,omitempty" firestore:"resumeSummaryText,omitempty"`
}

// Validate enforces the bio length limit on profile updates.
func (p *Profile) Validate() error {
	if p.BioText != nil && utf8.RuneCountInString(*p.BioText) > MaxBioLength {
		return &ValidationError{Field: "bioText", Message: fmt.Sprintf("must be at most %d characters", MaxBioLength)}
	}
	return nil
}

// IsEmpty reports whether no field is set.
func (p *Profile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Address == nil && p.BioText == nil && p.ResumeSummaryText == nil
}

// Merge returns a copy of p with every non-nil field of update applied.
func (p *Profile) Merge(update *Profile) *Profile {
	out := &Profile{}
	if p != nil {
		*out = *p
	}
	if update == nil {
		return out
	}
	if update.FirstName != nil {
		out.FirstName = update.FirstName
	}
	if update.LastName != nil {
		out.LastName = update.LastName
	}
	if update.Email != nil {
		out.Email = update.Email
	}
	if update.Address != nil {
		out.Address = update.Address
	}
	if update.BioText != nil {
		out.BioText = update.BioText
	}
	if update.ResumeSummaryText != nil {
		out.ResumeSummaryText = update.ResumeSummaryText
	}
	return out
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := *s
		return &v
	}
	return &Profile{
		FirstName:         clone(p.FirstName),
		LastName:          clone(p.LastName),
		Email:             clone(p.Email),
		Address:           clone(p.Address),
		BioText:           clone(p.BioText),
		ResumeSummaryText: clone(p.ResumeSummaryText),
	}
}

// DisplayName joins first and last name. It returns nil when neither is set.
func (p *Profile) DisplayName() *string {
	if p == nil {
		return nil
	}
	var parts []string
	if p.FirstName != nil && strings.TrimSpace(*p.FirstName) != "" {
		parts = append(parts, strings.TrimSpace(*p.FirstName))
	}
	if p.LastName != nil && strings.TrimSpace(*p.LastName) != "" {
		parts = append(parts, strings.TrimSpace(*p.LastName))
	}
	if len(parts) == 0 {
		return nil
	}
	name := strings.Join(parts, " ")
	return &name
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
