package models

// ProviderKind selects a language-model client implementation.
type ProviderKind string

const (
	ProviderOpenAICompatible ProviderKind = "openai_compatible"
	ProviderAnthropic        ProviderKind = "anthropic"
)

// ProviderConfig holds configuration for a language-model backend. The
// openai_compatible kind covers any server exposing the OpenAI API shape,
// including local model servers.
type ProviderConfig struct {
	Kind           ProviderKind      `yaml:"kind" json:"kind"`
	APIKey         string            `yaml:"api_key" json:"api_key,omitzero"`
	BaseURL        string            `yaml:"base_url" json:"base_url,omitzero"`
	Model          string            `yaml:"model" json:"model"`
	EmbeddingModel string            `yaml:"embedding_model" json:"embedding_model,omitzero"`
	TimeoutMs      int               `yaml:"timeout_ms" json:"timeout_ms,omitzero"`
	Headers        map[string]string `yaml:"headers" json:"headers,omitzero"`
}

// EmbeddingSource selects an embedding provider implementation per request.
type EmbeddingSource string

const (
	EmbeddingSourceRemote EmbeddingSource = "remote"
	EmbeddingSourceLocal  EmbeddingSource = "local"
)

// LocalEmbeddingConfig configures the static-vector-table provider.
type LocalEmbeddingConfig struct {
	Dimension int    `yaml:"dimension" json:"dimension,omitzero"`
	ModelPath string `yaml:"model_path" json:"model_path,omitzero"`
}
