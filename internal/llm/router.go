package llm

import (
	"context"
	"errors"
	"fmt"
)

// Router dispatches each request to the client registered for its model's provider.
type Router struct {
	config  *Config
	clients map[Provider]Client
}

// NewRouter creates a router over the given provider clients.
func NewRouter(config *Config, clients map[Provider]Client) *Router {
	if config == nil {
		config = DefaultConfig()
	}
	registered := make(map[Provider]Client, len(clients))
	for p, c := range clients {
		if c != nil {
			registered[p] = c
		}
	}
	return &Router{config: config, clients: registered}
}

// NewClient builds a Router with a client for every provider that has an API key.
func NewClient(ctx context.Context, config *Config, geminiKey, openAIKey, openAIBaseURL string) (*Router, error) {
	if config == nil {
		config = DefaultConfig()
	}
	clients := map[Provider]Client{}

	if geminiKey != "" {
		gemini, err := NewGeminiClient(ctx, config, geminiKey)
		if err != nil {
			return nil, err
		}
		clients[ProviderGemini] = gemini
	}
	if openAIKey != "" {
		oa, err := NewOpenAIClient(config, openAIKey, openAIBaseURL)
		if err != nil {
			return nil, err
		}
		clients[ProviderOpenAI] = oa
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("at least one provider API key is required")
	}

	return NewRouter(config, clients), nil
}

// GenerateJSON resolves the model id and forwards to the provider client.
func (r *Router) GenerateJSON(ctx context.Context, req Request) (string, error) {
	req.Model = r.config.ResolveModel(req.Model)
	provider, _, err := SplitModelID(req.Model)
	if err != nil {
		return "", err
	}
	client, ok := r.clients[provider]
	if !ok {
		return "", fmt.Errorf("%w: no client configured for %s", ErrUnknownProvider, provider)
	}
	return client.GenerateJSON(ctx, req)
}

// Providers lists the providers with a configured client.
func (r *Router) Providers() []Provider {
	out := make([]Provider, 0, len(r.clients))
	for _, p := range []Provider{ProviderGemini, ProviderOpenAI} {
		if _, ok := r.clients[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Close closes every registered client.
func (r *Router) Close() error {
	var errs []error
	for _, c := range r.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
