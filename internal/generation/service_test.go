package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/introbird/internal/profile"
	"github.com/jonathan/introbird/internal/types"
)

type failingProfiles struct{ err error }

func (f failingProfiles) GetProfile(context.Context, string) (*types.Profile, error) {
	return nil, f.err
}

func (f failingProfiles) SaveProfile(context.Context, string, *types.Profile) (*types.Profile, error) {
	return nil, f.err
}

func newTestService(gen Generator, profiles ProfileStore) (*Service, *sleepRecorder) {
	inv, rec := newTestInvoker(gen)
	return NewService(inv, profiles, nil), rec
}

func validRequest() types.GenerationRequest {
	return types.GenerationRequest{
		Mode:        types.ModeReply,
		PrimaryText: "Hi, are you free for a call on Friday?",
	}
}

func TestGenerateSuggestions_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   types.GenerationRequest
		field string
	}{
		{"unknown mode", types.GenerationRequest{Mode: "poem", PrimaryText: "long enough text"}, "mode"},
		{"short text", types.GenerationRequest{Mode: types.ModeReply, PrimaryText: "too short"}, "primaryText"},
		{"empty text", types.GenerationRequest{Mode: types.ModeReply}, "primaryText"},
		{"small length hint", types.GenerationRequest{Mode: types.ModeReply, PrimaryText: "long enough text", LengthHint: types.IntPtr(5)}, "lengthHint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{responses: []response{{raw: `{"suggestions":["x"]}`}}}
			svc, _ := newTestService(gen, nil)

			_, err := svc.GenerateSuggestions(context.Background(), tt.req)

			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, gen.calls)
		})
	}
}

func TestGenerateSuggestions_ExactlyTenCharacters(t *testing.T) {
	gen := &fakeGenerator{responses: []response{{raw: `{"suggestions":["x"]}`}}}
	svc, _ := newTestService(gen, nil)

	req := validRequest()
	req.PrimaryText = "ééééééééé!"

	_, err := svc.GenerateSuggestions(context.Background(), req)
	require.NoError(t, err)
}

func TestGenerateSuggestions_Personalized(t *testing.T) {
	store := profile.NewMemoryStore()
	_, err := store.SaveProfile(context.Background(), "user-1", &types.Profile{
		FirstName: types.StringPtr("Ada"),
		LastName:  types.StringPtr("Lovelace"),
		Email:     types.StringPtr("ada@example.com"),
		BioText:   types.StringPtr("   "),
	})
	require.NoError(t, err)

	gen := &fakeGenerator{responses: []response{{raw: `{"suggestions":["a","b","c"]}`}}}
	svc, _ := newTestService(gen, store)

	req := validRequest()
	req.RequesterID = "user-1"
	req.Tone = "formal"

	result, err := svc.GenerateSuggestions(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, result.Suggestions, 3)

	vars := gen.calls[0].vars
	assert.Equal(t, "Ada Lovelace", vars["DisplayName"])
	assert.Equal(t, "ada@example.com", vars["Email"])
	assert.NotContains(t, vars, "Bio")
	assert.Contains(t, vars["Guidance"], "Use the following tone: formal.")
	assert.Contains(t, vars["Guidance"], "Name: Ada Lovelace")
}

func TestGenerateSuggestions_ProfileFailureDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	gen := &fakeGenerator{responses: []response{{raw: `{"suggestions":["plain"]}`}}}
	inv, _ := newTestInvoker(gen)
	svc := NewService(inv, failingProfiles{err: errors.New("firestore down")}, zap.New(core))

	req := validRequest()
	req.RequesterID = "user-1"

	result, err := svc.GenerateSuggestions(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []string{"plain"}, result.Suggestions)
	assert.NotContains(t, gen.calls[0].vars, "DisplayName")
	assert.Equal(t, 1, logs.FilterMessageSnippet("Profile lookup failed").Len())
}

func TestGenerateSuggestions_UnknownRequester(t *testing.T) {
	gen := &fakeGenerator{responses: []response{{raw: `{"suggestions":["plain"]}`}}}
	svc, _ := newTestService(gen, profile.NewMemoryStore())

	req := validRequest()
	req.RequesterID = "nobody"

	_, err := svc.GenerateSuggestions(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "", gen.calls[0].vars["Guidance"])
}

func TestGenerateSuggestionsStream(t *testing.T) {
	gen := &fakeGenerator{responses: []response{
		{err: errors.New("overloaded")},
		{raw: `{"suggestions":["ok"]}`},
	}}
	svc, rec := newTestService(gen, nil)

	var events []Event
	result, err := svc.GenerateSuggestionsStream(context.Background(), validRequest(), func(e Event) {
		events = append(events, e)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, result.Suggestions)
	assert.Len(t, events, 3)
	assert.Len(t, rec.delays, 1)
}

func TestImproveDraft(t *testing.T) {
	gen := &fakeGenerator{responses: []response{{raw: `{"refinedDraft":"Dear Bob, thank you."}`}}}
	svc, _ := newTestService(gen, nil)

	out, err := svc.ImproveDraft(context.Background(), types.ImproveDraftRequest{Draft: "thx bob", ModelID: "openai/gpt-4o-mini"})

	require.NoError(t, err)
	assert.Equal(t, "Dear Bob, thank you.", out.RefinedDraft)
	assert.Equal(t, TemplateImproveDraft, gen.calls[0].templateID)
	assert.Equal(t, "thx bob", gen.calls[0].vars["Draft"])
	assert.Equal(t, "openai/gpt-4o-mini", gen.calls[0].opts.Model)

	_, err = svc.ImproveDraft(context.Background(), types.ImproveDraftRequest{Draft: "hey"})
	assert.True(t, types.IsValidationError(err))
}

func TestRefineDraft(t *testing.T) {
	gen := &fakeGenerator{responses: []response{
		{err: errors.New("503")},
		{raw: `{"refinedDraft":"Shorter."}`},
	}}
	svc, rec := newTestService(gen, nil)

	out, err := svc.RefineDraft(context.Background(), types.RefineDraftRequest{CurrentDraft: "A long draft", Instruction: "make it shorter"})

	require.NoError(t, err)
	assert.Equal(t, "Shorter.", out.RefinedDraft)
	assert.Len(t, rec.delays, 1)
	assert.Equal(t, "googleai/gemini-2.0-flash", gen.calls[1].opts.Model)

	_, err = svc.RefineDraft(context.Background(), types.RefineDraftRequest{CurrentDraft: "A long draft"})
	assert.True(t, types.IsValidationError(err))
}

func TestRefineDraft_DecodeFailure(t *testing.T) {
	gen := &fakeGenerator{responses: []response{{raw: `{"suggestions":["wrong shape"]}`}}}
	svc, _ := newTestService(gen, nil)

	_, err := svc.RefineDraft(context.Background(), types.RefineDraftRequest{CurrentDraft: "draft", Instruction: "shorter"})

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "refined_draft", decodeErr.Schema)
	assert.Len(t, gen.calls, 1)
}

func TestSummarizeEmail(t *testing.T) {
	gen := &fakeGenerator{responses: []response{{raw: `{"summary":"Bob wants a call Friday."}`}}}
	svc, _ := newTestService(gen, nil)

	out, err := svc.SummarizeEmail(context.Background(), types.SummarizeEmailRequest{EmailBody: "Hi, can we talk Friday? Bob"})

	require.NoError(t, err)
	assert.Equal(t, "Bob wants a call Friday.", out.Summary)
	assert.Equal(t, TemplateSummarizeEmail, gen.calls[0].templateID)

	_, err = svc.SummarizeEmail(context.Background(), types.SummarizeEmailRequest{})
	assert.True(t, types.IsValidationError(err))
}

func TestSummarizeResume(t *testing.T) {
	store := profile.NewMemoryStore()
	gen := &fakeGenerator{responses: []response{{raw: `{"summary":"- Go engineer"}`}}}
	svc, _ := newTestService(gen, store)

	pdf := []byte("%PDF-1.7\n...")
	out, err := svc.SummarizeResume(context.Background(), "user-1", pdf, "")

	require.NoError(t, err)
	assert.Equal(t, "- Go engineer", out.Summary)

	call := gen.calls[0]
	assert.Equal(t, TemplateSummarizeCV, call.templateID)
	require.Len(t, call.opts.Attachments, 1)
	assert.Equal(t, "application/pdf", call.opts.Attachments[0].MIMEType)
	assert.Equal(t, pdf, call.opts.Attachments[0].Data)

	saved, err := store.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, saved.ResumeSummaryText)
	assert.Equal(t, "- Go engineer", *saved.ResumeSummaryText)
}

func TestSummarizeResume_RejectsInput(t *testing.T) {
	tests := []struct {
		name string
		user string
		pdf  []byte
	}{
		{"no user", "", []byte("%PDF-1.4")},
		{"empty file", "user-1", nil},
		{"not a pdf", "user-1", []byte("PK\x03\x04 docx")},
		{"too large", "user-1", append([]byte("%PDF-"), make([]byte, MaxResumeBytes)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{responses: []response{{raw: `{"summary":"x"}`}}}
			svc, _ := newTestService(gen, profile.NewMemoryStore())

			_, err := svc.SummarizeResume(context.Background(), tt.user, tt.pdf, "")

			assert.True(t, types.IsValidationError(err))
			assert.Empty(t, gen.calls)
		})
	}
}

func TestSummarizeResume_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{responses: []response{{err: errors.New("quota exceeded")}}}
	svc, _ := newTestService(gen, profile.NewMemoryStore())

	_, err := svc.SummarizeResume(context.Background(), "user-1", []byte("%PDF-1.4"), "")

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to summarize resume: "))
	assert.True(t, IsFatal(err))
}

func TestProfileOperations(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{}, profile.NewMemoryStore())
	ctx := context.Background()

	empty, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	updated, err := svc.UpdateProfile(ctx, "user-1", &types.Profile{FirstName: types.StringPtr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", *updated.FirstName)

	updated, err = svc.UpdateProfile(ctx, "user-1", &types.Profile{BioText: types.StringPtr("Mathematician")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", *updated.FirstName)
	assert.Equal(t, "Mathematician", *updated.BioText)

	_, err = svc.UpdateProfile(ctx, "user-1", &types.Profile{BioText: types.StringPtr(strings.Repeat("a", types.MaxBioLength+1))})
	assert.True(t, types.IsValidationError(err))

	got, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Mathematician", *got.BioText)
}

func TestProfileOperations_Unavailable(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{}, nil)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, "user-1")
	assert.ErrorIs(t, err, ErrProfilesUnavailable)
	_, err = svc.UpdateProfile(ctx, "user-1", &types.Profile{})
	assert.ErrorIs(t, err, ErrProfilesUnavailable)
	_, err = svc.SummarizeResume(ctx, "user-1", []byte("%PDF-1.4"), "")
	assert.ErrorIs(t, err, ErrProfilesUnavailable)
}

func TestProfileOperations_StoreFailure(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{}, failingProfiles{err: errors.New("connection refused")})

	_, err := svc.GetProfile(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load profile")
}
