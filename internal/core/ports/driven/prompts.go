package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from user-editable files with
// embedded defaults as fallback.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the pipeline.
const (
	// PromptCorrection rewrites a question to fix typos and grammar.
	// The template expects a %s placeholder for the original question.
	PromptCorrection = "correction"

	// PromptDecompose splits a compound question into sub-questions,
	// one per line. The template expects a %s placeholder.
	PromptDecompose = "decompose"

	// PromptAnswer grounds the answer in retrieved context.
	// The template expects %s (question) and %s (context) placeholders.
	PromptAnswer = "answer"

	// PromptMediaRelevance asks a yes/no question about whether a media
	// chunk supports a drafted answer. The template expects %s (answer)
	// and %s (media preview) placeholders.
	PromptMediaRelevance = "media_relevance"
)
