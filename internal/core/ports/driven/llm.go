package driven

import "context"

// GenerationService produces free-text completions from a prompt.
// The contract is synchronous, one prompt at a time, with no
// conversation state carried between calls.
//
// Implementations may include:
//   - OpenAI (GPT-4o family)
//   - Ollama (local models)
type GenerationService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
