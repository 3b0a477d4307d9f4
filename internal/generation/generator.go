package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/introbird/internal/llm"
	"github.com/jonathan/introbird/internal/prompts"
)

// Template ids are "<prompt file without .json>/<key>".
const (
	TemplateImproveDraft   = "drafts/improve"
	TemplateRefineDraft    = "drafts/refine"
	TemplateSummarizeEmail = "summaries/email"
	TemplateSummarizeCV    = "summaries/resume"
)

// SuggestionTemplate returns the template id for a mode's wire id.
func SuggestionTemplate(mode string) string {
	return "generation/" + mode
}

// Options are the per-call settings passed to a Generator.
type Options struct {
	Model       string
	Output      llm.OutputSchema
	Attachments []llm.Attachment
}

// Generator is the text-generation capability: render a template with vars and return
// the model's raw JSON answer. Errors carry a human-readable message.
type Generator interface {
	Generate(ctx context.Context, templateID string, vars map[string]string, opts Options) (string, error)
}

// LLMGenerator renders embedded prompt templates and calls an llm.Client.
type LLMGenerator struct {
	client llm.Client
}

// NewLLMGenerator creates a generator over client.
func NewLLMGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// Generate renders the template and performs one model call.
func (g *LLMGenerator) Generate(ctx context.Context, templateID string, vars map[string]string, opts Options) (string, error) {
	prompt, err := RenderTemplate(templateID, vars)
	if err != nil {
		return "", err
	}

	output := opts.Output
	return g.client.GenerateJSON(ctx, llm.Request{
		Model:       opts.Model,
		Prompt:      prompt,
		Output:      &output,
		Attachments: opts.Attachments,
	})
}

// RenderTemplate resolves a template id to its prompt file and key and formats it.
func RenderTemplate(templateID string, vars map[string]string) (string, error) {
	file, key, ok := strings.Cut(templateID, "/")
	if !ok || file == "" || key == "" {
		return "", fmt.Errorf("invalid template id %q", templateID)
	}
	return prompts.Render(file+".json", key, vars)
}
