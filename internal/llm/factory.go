package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/Fareedsea/todo-chatbot/internal/config"
)

// NewFromConfig creates the fully decorated provider chain for the given
// configuration: base provider, optional rate limiter, retry policy.
func NewFromConfig(cfg *config.Config) (Provider, error) {
	base, err := newBaseProvider(cfg)
	if err != nil {
		return nil, err
	}

	provider := base
	if cfg.Chat.RateLimitRPM > 0 {
		provider = NewRateLimitedProvider(provider, cfg.Chat.RateLimitRPM)
	}

	provider = NewRetryingProvider(provider, RetryConfig{
		MaxAttempts:    cfg.Chat.RetryAttempts,
		AttemptTimeout: time.Duration(cfg.Chat.ModelTimeoutMS) * time.Millisecond,
	})

	return provider, nil
}

func newBaseProvider(cfg *config.Config) (Provider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL(cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		if baseURL != "" {
			return NewCompatibleProvider("openai", apiKey, baseURL, cfg.Model), nil
		}
		return NewOpenAIProvider(apiKey, cfg.Model), nil

	case config.ProviderCohere:
		apiKey := os.Getenv("COHERE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("COHERE_API_KEY environment variable is not set")
		}
		return NewCompatibleProvider("cohere", apiKey, baseURL, cfg.Model), nil

	case config.ProviderOpenRouter:
		apiKey := os.Getenv("OPENROUTER_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
		}
		return NewCompatibleProvider("openrouter", apiKey, baseURL, cfg.Model), nil

	case config.ProviderOllama:
		// Ollama exposes an OpenAI-compatible endpoint and needs no key.
		return NewCompatibleProvider("ollama", "ollama", baseURL, cfg.Model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}
}
