package llmHandlers

import (
	"context"
	"fmt"
)

type Provider string

const (
	ProviderGemini          Provider = "gemini"
	ProviderOpenAI          Provider = "openai"
	ProviderGroq            Provider = "groq" // openai compatible
	ProviderVertexAnthropic Provider = "vertex_anthropic"
)

type Config struct {
	Provider Provider

	// Gemini / OpenAI / Groq
	Model   string
	APIKey  string
	BaseURL string

	// Vertex Claude config
	Vertex VertexConfig
}

// New builds the client for cfg.Provider.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGenaiGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderOpenAI, ProviderGroq:
		if cfg.Model == "" {
			return nil, fmt.Errorf("%s: model must be set", cfg.Provider)
		}
		return NewLangChainClient(LangChainConfig{
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
		})
	case ProviderVertexAnthropic:
		return NewVertexAnthropicClient(ctx, cfg.Vertex)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
