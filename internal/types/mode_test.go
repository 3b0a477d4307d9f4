//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModes_TableIsComplete(t *testing.T) {
	modes := Modes()
	require.Len(t, modes, 5)

	seenFlags := map[string]bool{}
	for _, m := range modes {
		assert.True(t, m.Mode.Valid(), m.Mode)
		assert.NotEmpty(t, m.Label)
		assert.NotEmpty(t, m.ResultTitle)
		assert.Equal(t, MinPrimaryTextLength, m.MinInputLength)
		assert.False(t, seenFlags[m.TemplateFlag], "duplicate flag %s", m.TemplateFlag)
		seenFlags[m.TemplateFlag] = true

		switch m.Shape {
		case ShapeMulti:
			assert.Equal(t, 3, m.ExpectedSuggestions)
		case ShapeSingle:
			assert.Equal(t, 1, m.ExpectedSuggestions)
		default:
			t.Fatalf("unexpected shape %q", m.Shape)
		}
	}
}

func TestModes_ReturnsCopy(t *testing.T) {
	modes := Modes()
	modes[0].Label = "changed"
	spec, ok := LookupMode(ModeReply)
	require.True(t, ok)
	assert.Equal(t, "Reply to Email", spec.Label)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"reply", ModeReply, false},
		{"jobPosting", ModeJobPosting, false},
		{"applyToJob", ModeApplyToJob, false},
		{" casualMessage ", ModeCasualMessage, false},
		{"rewriteMessage", ModeRewriteMessage, false},
		{"Reply", "", true},
		{"", "", true},
		{"summarize", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplateFlags(t *testing.T) {
	assert.Equal(t, []string{
		"isReplyMode",
		"isJobPostingMode",
		"isApplyToJobMode",
		"isCasualMessageMode",
		"isRewriteMessageMode",
	}, TemplateFlags())
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation error: mode - bad", (&ValidationError{Field: "mode", Message: "bad"}).Error())
	assert.Equal(t, "validation error: bad", (&ValidationError{Message: "bad"}).Error())
}
