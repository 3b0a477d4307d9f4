package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Validate(t *testing.T) {
	ok := &Profile{BioText: StringPtr(strings.Repeat("a", MaxBioLength))}
	assert.NoError(t, ok.Validate())

	tooLong := &Profile{BioText: StringPtr(strings.Repeat("a", MaxBioLength+1))}
	err := tooLong.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bioText")
}

func TestProfile_Merge(t *testing.T) {
	base := &Profile{FirstName: StringPtr("Ada"), Email: StringPtr("ada@example.com")}
	update := &Profile{LastName: StringPtr("Lovelace"), Email: StringPtr("ada@newmail.com")}

	merged := base.Merge(update)

	assert.Equal(t, "Ada", *merged.FirstName)
	assert.Equal(t, "Lovelace", *merged.LastName)
	assert.Equal(t, "ada@newmail.com", *merged.Email)
	assert.Nil(t, merged.BioText)
	// base is untouched
	assert.Equal(t, "ada@example.com", *base.Email)
	assert.Nil(t, base.LastName)

	var nilProfile *Profile
	assert.Equal(t, "Lovelace", *nilProfile.Merge(update).LastName)
}

func TestProfile_DisplayName(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
		want    *string
	}{
		{"nil profile", nil, nil},
		{"no names", &Profile{Email: StringPtr("x@example.com")}, nil},
		{"first only", &Profile{FirstName: StringPtr("Ada")}, StringPtr("Ada")},
		{"last only", &Profile{LastName: StringPtr("Lovelace")}, StringPtr("Lovelace")},
		{"both", &Profile{FirstName: StringPtr(" Ada "), LastName: StringPtr("Lovelace")}, StringPtr("Ada Lovelace")},
		{"blank first", &Profile{FirstName: StringPtr("  "), LastName: StringPtr("Lovelace")}, StringPtr("Lovelace")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.DisplayName())
		})
	}
}

func TestProfile_IsEmpty(t *testing.T) {
	var p *Profile
	assert.True(t, p.IsEmpty())
	assert.True(t, (&Profile{}).IsEmpty())
	assert.False(t, (&Profile{Address: StringPtr("Berlin")}).IsEmpty())
}

func TestProfile_Clone(t *testing.T) {
	var nilProfile *Profile
	assert.Nil(t, nilProfile.Clone())

	original := &Profile{FirstName: StringPtr("Ada"), BioText: StringPtr("bio")}
	clone := original.Clone()
	assert.Equal(t, original, clone)

	*clone.FirstName = "Grace"
	assert.Equal(t, "Ada", *original.FirstName)
	assert.Nil(t, clone.LastName)
}

func TestProfile_ValidateCountsCharacters(t *testing.T) {
	multibyte := &Profile{BioText: StringPtr(strings.Repeat("é", MaxBioLength))}
	assert.NoError(t, multibyte.Validate())

	var ve *ValidationError
	require.ErrorAs(t, (&Profile{BioText: StringPtr(strings.Repeat("é", MaxBioLength+1))}).Validate(), &ve)
	assert.Equal(t, "bioText", ve.Field)
}

func TestProfile_JSONOmitsAbsentFields(t *testing.T) {
	data, err := json.Marshal(&Profile{FirstName: StringPtr("Ada")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Ada"}`, string(data))
}
