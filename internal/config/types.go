package config

// ProviderType identifies a reasoning-model provider.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderCohere     ProviderType = "cohere"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderOllama     ProviderType = "ollama"
)

// Config is the top-level todochat configuration, corresponding to .todochat.yml.
type Config struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
	BaseURL  string       `yaml:"base_url" koanf:"base_url"`

	Port           int    `yaml:"port" koanf:"port"`
	DataDir        string `yaml:"data_dir" koanf:"data_dir"`
	IdentityHeader string `yaml:"identity_header" koanf:"identity_header"`
	AllowAll       bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`

	Chat ChatConfig `yaml:"chat" koanf:"chat"`
}

// ChatConfig holds orchestration limits for the chat agent loop.
type ChatConfig struct {
	HistoryLimit   int `yaml:"history_limit" koanf:"history_limit"`
	MaxToolRounds  int `yaml:"max_tool_rounds" koanf:"max_tool_rounds"`
	ModelTimeoutMS int `yaml:"model_timeout_ms" koanf:"model_timeout_ms"`
	RetryAttempts  int `yaml:"retry_attempts" koanf:"retry_attempts"`
	RateLimitRPM   int `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
}
