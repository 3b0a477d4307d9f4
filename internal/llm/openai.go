package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client for OpenAI chat completions.
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client. baseURL may be empty.
func NewOpenAIClient(config *Config, apiKey, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// GenerateJSON requests a JSON object completion from the requested OpenAI model
func (c *OpenAIClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	provider, modelName, err := SplitModelID(c.config.ResolveModel(req.Model))
	if err != nil {
		return "", err
	}
	if provider != ProviderOpenAI {
		return "", fmt.Errorf("%w: %s is not an OpenAI model", ErrUnknownProvider, req.Model)
	}
	if len(req.Attachments) > 0 {
		return "", fmt.Errorf("%w: %s", ErrAttachmentsUnsupported, provider)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(req),
			},
		},
		Temperature: c.config.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no choices in response", ErrEmptyResponse)
	}

	return CleanJSONBlock(resp.Choices[0].Message.Content), nil
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (c *OpenAIClient) Close() error {
	return nil
}
