package models

// CacheConfig holds configuration for the tiered result cache.
type CacheConfig struct {
	// In-process tier
	DefaultTTLSeconds int `json:"default_ttl_seconds,omitzero" yaml:"default_ttl_seconds"`
	MaxKeys           int `json:"max_keys,omitzero" yaml:"max_keys"`
	SweepSeconds      int `json:"sweep_seconds,omitzero" yaml:"sweep_seconds"`

	// Optional Redis second tier
	RedisURL  string `json:"redis_url,omitzero" yaml:"redis_url"`
	KeyPrefix string `json:"key_prefix,omitzero" yaml:"key_prefix"`
}

// AnalysisTTLConfig holds per-sub-operation cache TTLs, in seconds.
// Synonyms and antonyms refresh most often, definitions least.
type AnalysisTTLConfig struct {
	AnalysisSeconds   int `json:"analysis_seconds,omitzero" yaml:"analysis_seconds"`
	SynonymSeconds    int `json:"synonym_seconds,omitzero" yaml:"synonym_seconds"`
	AntonymSeconds    int `json:"antonym_seconds,omitzero" yaml:"antonym_seconds"`
	DefinitionSeconds int `json:"definition_seconds,omitzero" yaml:"definition_seconds"`
	ContextSeconds    int `json:"context_seconds,omitzero" yaml:"context_seconds"`
	EmbeddingSeconds  int `json:"embedding_seconds,omitzero" yaml:"embedding_seconds"`
	SearchSeconds     int `json:"search_seconds,omitzero" yaml:"search_seconds"`
}

// SearchConfig holds semantic-search defaults.
type SearchConfig struct {
	DefaultLimit     int     `json:"default_limit,omitzero" yaml:"default_limit"`
	DefaultThreshold float64 `json:"default_threshold,omitzero" yaml:"default_threshold"`
	DefaultProvider  string  `json:"default_provider,omitzero" yaml:"default_provider"`
}
