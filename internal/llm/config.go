// Package llm provides centralized model configuration and provider client abstractions.
// Model ids are provider-qualified ("googleai/gemini-2.0-flash", "openai/gpt-4o-mini").
package llm

import (
	"fmt"
	"strings"
)

// Provider represents an LLM provider, used as the model id prefix.
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google AI (Gemini) provider
	ProviderGemini Provider = "googleai"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
)

// DefaultModelID is used when neither the request nor the configuration names a model.
const DefaultModelID = "googleai/gemini-2.0-flash"

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Provider Provider `json:"provider"`
}

// Config holds the model configuration for the application
type Config struct {
	DefaultModel string
	Models       []ModelInfo
	Temperature  float32
}

// DefaultConfig returns the default catalogue with Gemini Flash as the default model.
func DefaultConfig() *Config {
	return &Config{
		DefaultModel: DefaultModelID,
		Models: []ModelInfo{
			{ID: DefaultModelID, Label: "Gemini 2.0 Flash", Provider: ProviderGemini},
			{ID: "openai/gpt-4o-mini", Label: "GPT-4o mini", Provider: ProviderOpenAI},
			{ID: "openai/gpt-3.5-turbo", Label: "GPT-3.5 Turbo", Provider: ProviderOpenAI},
		},
		Temperature: 0.7,
	}
}

// ResolveModel returns the requested model id, or the configured default when empty.
func (c *Config) ResolveModel(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		return requested
	}
	if c != nil && c.DefaultModel != "" {
		return c.DefaultModel
	}
	return DefaultModelID
}

// Lookup returns the catalogue entry for id.
func (c *Config) Lookup(id string) (ModelInfo, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// WithDefaultModel returns a copy of the config with a different default model
func (c *Config) WithDefaultModel(id string) *Config {
	newConfig := &Config{
		DefaultModel: id,
		Models:       make([]ModelInfo, len(c.Models)),
		Temperature:  c.Temperature,
	}
	copy(newConfig.Models, c.Models)
	if _, ok := newConfig.Lookup(id); !ok {
		if provider, _, err := SplitModelID(id); err == nil {
			newConfig.Models = append(newConfig.Models, ModelInfo{ID: id, Label: id, Provider: provider})
		}
	}
	return newConfig
}

// SplitModelID splits "provider/name" into its parts.
// A bare name is treated as a Gemini model.
func SplitModelID(id string) (Provider, string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", fmt.Errorf("model id is empty")
	}
	prefix, name, found := strings.Cut(id, "/")
	if !found {
		return ProviderGemini, id, nil
	}
	if name == "" {
		return "", "", fmt.Errorf("model id %q has no model name", id)
	}
	switch Provider(prefix) {
	case ProviderGemini, ProviderOpenAI:
		return Provider(prefix), name, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownProvider, prefix)
	}
}
