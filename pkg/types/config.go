package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout. Zero means no client-side limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CatalogConfig holds settings for the arXiv catalog client.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the arXiv API query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Category is the arXiv category to query (default "cs.AI").
	Category string `json:"category" yaml:"category" mapstructure:"category"`

	// Limit caps the number of records returned per fetch (default 3).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// PageSize is the number of entries requested per API page (default 25).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// Delay is the minimum gap between consecutive page requests (default 2s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// LLMProvider identifies the wire protocol of the text-generation service.
type LLMProvider string

const (
	ProviderOllama LLMProvider = "ollama"
	ProviderOpenAI LLMProvider = "openai"
)

// LLMConfig is pass-through configuration for the text-generation backend.
type LLMConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend protocol: ollama or openai.
	Provider LLMProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "llama3").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL is the service address (e.g. "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is the credential sent as a bearer token. Ollama ignores it.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens caps the length of each generated reply.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// AgentConfig holds settings for the agent executor.
type AgentConfig struct {
	// MaxIterations bounds the number of tool-use rounds per task (default 10).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`
}

// Config groups all component configurations. It is built once at startup
// and passed by value into constructors.
type Config struct {
	LLM     LLMConfig     `json:"llm" yaml:"llm" mapstructure:"llm"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Agent   AgentConfig   `json:"agent" yaml:"agent" mapstructure:"agent"`
}
