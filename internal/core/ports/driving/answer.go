package driving

import (
	"context"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

// AnswerService answers natural-language questions over the ingested corpus.
type AnswerService interface {
	// Answer runs the full pipeline for a question: cache lookup,
	// correction, decomposition, two-stage retrieval, generation,
	// media filtering and caching.
	//
	// scope restricts retrieval to the given document IDs; empty means
	// the whole corpus. Returns domain.ErrInvalidRequest for a blank
	// question, domain.ErrRetrieval or domain.ErrGeneration (wrapped,
	// with reasons) for pipeline failures.
	Answer(ctx context.Context, question string, scope []string) (*domain.Answer, error)
}
