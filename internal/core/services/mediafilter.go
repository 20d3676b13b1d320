package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driven"
	"github.com/quaero-labs/quaero/internal/logger"
)

// mediaPreviewLength bounds how much of a media chunk is shown to the
// provider when asking about relevance.
const mediaPreviewLength = 500

// MediaFilter is a post-hoc filter that asks the generation provider
// whether a candidate non-text chunk supports a drafted answer. It is
// an enrichment step: a provider failure for one chunk skips that
// chunk and never aborts the batch.
type MediaFilter struct {
	llm     driven.GenerationService
	prompts driven.PromptStore
}

// NewMediaFilter creates a media relevance filter. llm may be nil, in
// which case all candidates are kept (up to the keep bound).
func NewMediaFilter(llm driven.GenerationService, prompts driven.PromptStore) *MediaFilter {
	return &MediaFilter{llm: llm, prompts: prompts}
}

// Filter returns the media chunks judged to support the answer, in
// original order, truncated to keep.
func (f *MediaFilter) Filter(ctx context.Context, answerText string, media []domain.RetrievedChunk, keep int) []domain.RetrievedChunk {
	if keep <= 0 || len(media) == 0 {
		return nil
	}

	kept := make([]domain.RetrievedChunk, 0, keep)
	for _, chunk := range media {
		if len(kept) >= keep {
			break
		}
		if f.supports(ctx, answerText, chunk) {
			kept = append(kept, chunk)
		}
	}

	logger.Debug("Media filter kept %d of %d candidates", len(kept), len(media))
	return kept
}

// supports asks the provider a yes/no question about one chunk.
// A response starting with "YES" (case-insensitive) keeps the chunk.
func (f *MediaFilter) supports(ctx context.Context, answerText string, chunk domain.RetrievedChunk) bool {
	if f.llm == nil {
		return true
	}

	template, err := f.prompts.Load(driven.PromptMediaRelevance)
	if err != nil {
		logger.Warn("Media relevance prompt unavailable, skipping chunk %s: %v", chunk.ID, err)
		return false
	}

	preview := chunk.Chunk.Content
	if len(preview) > mediaPreviewLength {
		preview = preview[:mediaPreviewLength]
	}

	verdict, err := f.llm.Generate(ctx, fmt.Sprintf(template, answerText, preview), driven.GenerateOptions{Temperature: 0.0})
	if err != nil {
		logger.Warn("Media relevance check failed, skipping chunk %s: %v", chunk.ID, err)
		return false
	}

	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(verdict)), "YES")
}
