package config

// defaultBaseURLs maps providers that speak the OpenAI wire protocol to their
// API endpoints. An explicit base_url in the config always wins.
var defaultBaseURLs = map[ProviderType]string{
	ProviderCohere:     "https://api.cohere.ai/compatibility/v1",
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
	ProviderOllama:     "http://localhost:11434/v1",
}

// defaultModels maps each provider to a sensible default chat model.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderCohere:     "command-r-plus",
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderOllama:     "llama3",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderCohere,
		Model:          defaultModels[ProviderCohere],
		Port:           8080,
		DataDir:        "data",
		IdentityHeader: "X-User-ID",
		AllowAll:       false,
		Chat: ChatConfig{
			HistoryLimit:   20,
			MaxToolRounds:  5,
			ModelTimeoutMS: 30000,
			RetryAttempts:  3,
			RateLimitRPM:   0,
		},
	}
}

// DefaultBaseURL returns the endpoint for the given provider, or empty for
// providers whose client library knows its own endpoint.
func DefaultBaseURL(provider ProviderType) string {
	return defaultBaseURLs[provider]
}

// DefaultModel returns the default chat model for the given provider.
func DefaultModel(provider ProviderType) string {
	return defaultModels[provider]
}
