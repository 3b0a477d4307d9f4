package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/introbird/internal/llm"
	"github.com/jonathan/introbird/internal/logging"
	"github.com/jonathan/introbird/internal/prompts"
	"github.com/jonathan/introbird/internal/schemas"
	"github.com/jonathan/introbird/internal/shaping"
	"github.com/jonathan/introbird/internal/types"
)

// Operation names used in logs, metrics and errors.
const (
	OpGenerateSuggestions = "generate_suggestions"
	OpImproveDraft        = "improve_draft"
	OpRefineDraft         = "refine_draft"
	OpSummarizeEmail      = "summarize_email"
	OpSummarizeResume     = "summarize_resume"
)

// maxRawInError bounds how much of an undecodable response is kept in a DecodeError.
const maxRawInError = 500

// Invoker submits shaped payloads to the generator under the retry policy and
// decodes the answer into the expected shape.
type Invoker struct {
	generator    Generator
	retrier      *Retrier
	defaultModel string
}

// NewInvoker creates an invoker. defaultModel is used when a call names no model.
func NewInvoker(generator Generator, retrier *Retrier, defaultModel string) *Invoker {
	if retrier == nil {
		retrier = NewRetrier(DefaultRetryPolicy(), nil)
	}
	if defaultModel == "" {
		defaultModel = llm.DefaultModelID
	}
	return &Invoker{generator: generator, retrier: retrier, defaultModel: defaultModel}
}

// DefaultModel returns the model used when a call names none.
func (i *Invoker) DefaultModel() string {
	return i.defaultModel
}

// Invoke generates suggestions for p.
func (i *Invoker) Invoke(ctx context.Context, p shaping.Payload, modelID string) (*types.GenerationResult, error) {
	return i.InvokeWithProgress(ctx, p, modelID, nil)
}

// InvokeWithProgress is Invoke with retry-loop progress reported to progress.
func (i *Invoker) InvokeWithProgress(ctx context.Context, p shaping.Payload, modelID string, progress ProgressFunc) (*types.GenerationResult, error) {
	vars, err := TemplateVars(p)
	if err != nil {
		return nil, &GenerationError{Operation: OpGenerateSuggestions, Cause: err}
	}

	var result types.GenerationResult
	err = i.call(ctx, OpGenerateSuggestions, SuggestionTemplate(string(p.Mode())), vars, Options{
		Model:  modelID,
		Output: llm.SuggestionsSchema(),
	}, schemas.Suggestions, &result, progress)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// call runs one template under the retry policy and decodes the answer into out.
func (i *Invoker) call(
	ctx context.Context,
	operation, templateID string,
	vars map[string]string,
	opts Options,
	schemaName string,
	out any,
	progress ProgressFunc,
) error {
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = i.defaultModel
	}

	return i.retrier.Do(ctx, operation, progress, func(ctx context.Context) error {
		raw, err := i.generator.Generate(ctx, templateID, vars, opts)
		if err != nil {
			return err
		}
		return decode(schemaName, raw, out)
	})
}

// decode validates raw against the named schema and unmarshals it into out.
func decode(schemaName, raw string, out any) error {
	if err := schemas.Validate(schemaName, raw); err != nil {
		return &DecodeError{Schema: schemaName, Raw: logging.Truncate(raw, maxRawInError), Cause: err}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &DecodeError{Schema: schemaName, Raw: logging.Truncate(raw, maxRawInError), Cause: err}
	}
	return nil
}

// TemplateVars flattens p and adds the rendered Guidance block built from its advisory fields.
func TemplateVars(p shaping.Payload) (map[string]string, error) {
	vars := shaping.Vars(p)

	guidance, err := buildGuidance(vars)
	if err != nil {
		return nil, err
	}
	vars["Guidance"] = guidance
	return vars, nil
}

func buildGuidance(vars map[string]string) (string, error) {
	var parts []string

	if tone, ok := vars[shaping.VarTone]; ok {
		s, err := prompts.Render(prompts.GenerationFile, "tone", map[string]string{"Tone": tone})
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if hint, ok := vars[shaping.VarLengthHint]; ok {
		s, err := prompts.Render(prompts.GenerationFile, "length", map[string]string{"LengthHint": hint})
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if details := personalizationDetails(vars); details != "" {
		s, err := prompts.Render(prompts.GenerationFile, "personalization", map[string]string{"Details": details})
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, "\n") + "\n", nil
}

func personalizationDetails(vars map[string]string) string {
	labels := []struct{ key, label string }{
		{shaping.VarDisplayName, "Name"},
		{shaping.VarEmail, "Email"},
		{shaping.VarAddress, "Address"},
		{shaping.VarBio, "About"},
		{shaping.VarResumeSummary, "Resume summary"},
	}
	var sb strings.Builder
	for _, l := range labels {
		if v, ok := vars[l.key]; ok {
			sb.WriteString(fmt.Sprintf("%s: %s\n", l.label, v))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
