package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	// ErrUnknownProvider is returned for model ids with an unsupported prefix.
	ErrUnknownProvider = errors.New("unknown model provider")
	// ErrEmptyResponse is returned when the provider answers without any text.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrAttachmentsUnsupported is returned when a provider cannot accept binary parts.
	ErrAttachmentsUnsupported = errors.New("provider does not support attachments")
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateJSON runs one model call and returns the raw JSON text of the answer
	GenerateJSON(ctx context.Context, req Request) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// Request is a single structured generation call.
type Request struct {
	Model       string // provider-qualified model id
	Prompt      string
	Output      *OutputSchema
	Attachments []Attachment
}

// Attachment is binary media sent alongside the prompt (e.g. a PDF resume).
type Attachment struct {
	MIMEType string
	Data     []byte
}

// SafetySettings are applied to every Gemini call.
func SafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockLowAndAbove},
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateJSON generates JSON content with the requested Gemini model
func (c *GeminiClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	provider, modelName, err := SplitModelID(c.config.ResolveModel(req.Model))
	if err != nil {
		return "", err
	}
	if provider != ProviderGemini {
		return "", fmt.Errorf("%w: %s is not a Gemini model", ErrUnknownProvider, req.Model)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.Temperature)
	model.SafetySettings = SafetySettings()
	model.ResponseMIMEType = "application/json"
	if req.Output != nil {
		model.ResponseSchema = req.Output.GenaiSchema()
	}

	parts := []genai.Part{genai.Text(buildPrompt(req))}
	for _, att := range req.Attachments {
		parts = append(parts, genai.Blob{MIMEType: att.MIMEType, Data: att.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	// Clean any markdown code block wrappers
	return CleanJSONBlock(text), nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// buildPrompt appends the output contract to the rendered prompt.
func buildPrompt(req Request) string {
	if req.Output == nil {
		return req.Prompt
	}
	return strings.TrimRight(req.Prompt, "\n") + "\n\n" + req.Output.Instructions()
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content in response", ErrEmptyResponse)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text parts in response", ErrEmptyResponse)
	}

	return strings.Join(parts, ""), nil
}
