package llm

import (
	"context"
	"fmt"

	"qahub/internal/config"
	"qahub/internal/types"
)

// NewClient builds the completion client selected by config.
func NewClient(ctx context.Context, cfg *config.Config) (types.LLMClient, error) {
	c := Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	}

	switch cfg.LLM.Provider {
	case "openai":
		return NewOpenAIClient(c), nil
	case "groq":
		if c.BaseURL == "" {
			c.BaseURL = DefaultGroqConfig(c.APIKey).BaseURL
		}
		return NewOpenAIClient(c), nil
	case "gemini":
		return NewGeminiClient(ctx, c)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}
