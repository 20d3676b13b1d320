package driven

// ConfigStore provides persistent key-value configuration.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if unset.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if unset.
	GetInt(key string) int

	// GetFloat retrieves a float value, or 0 if unset.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, or false if unset.
	GetBool(key string) bool

	// Set stores a configuration value and persists it.
	Set(key string, value any) error

	// Delete removes a configuration value and persists the change.
	Delete(key string) error
}

// Well-known configuration keys.
const (
	// ConfigEmbeddingProvider selects the embedding adapter ("openai" or "ollama").
	ConfigEmbeddingProvider = "embedding.provider"
	// ConfigEmbeddingModel overrides the embedding model name.
	ConfigEmbeddingModel = "embedding.model"
	// ConfigEmbeddingAPIKey is the embedding provider API key.
	ConfigEmbeddingAPIKey = "embedding.api_key"
	// ConfigEmbeddingBaseURL overrides the embedding API base URL.
	ConfigEmbeddingBaseURL = "embedding.base_url"

	// ConfigLLMProvider selects the generation adapter ("openai" or "ollama").
	ConfigLLMProvider = "llm.provider"
	// ConfigLLMModel overrides the generation model name.
	ConfigLLMModel = "llm.model"
	// ConfigLLMAPIKey is the generation provider API key.
	ConfigLLMAPIKey = "llm.api_key"
	// ConfigLLMBaseURL overrides the generation API base URL.
	ConfigLLMBaseURL = "llm.base_url"
	// ConfigLLMRateLimit is the sustained generation requests/second (0 = unlimited).
	ConfigLLMRateLimit = "llm.rate_limit"

	// ConfigRetrievalTopK bounds chunk-level result counts.
	ConfigRetrievalTopK = "retrieval.top_k"
	// ConfigRetrievalTopDocs bounds document-level result counts.
	ConfigRetrievalTopDocs = "retrieval.top_docs"

	// ConfigCacheMaxEntries bounds the answer cache (0 = unbounded,
	// preserving the original behaviour).
	ConfigCacheMaxEntries = "cache.max_entries"

	// ConfigServerAddr is the HTTP listen address.
	ConfigServerAddr = "server.addr"
)
