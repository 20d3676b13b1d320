package services

import (
	"context"

	"github.com/quaero-labs/quaero/internal/core/ports/driven"
	"github.com/quaero-labs/quaero/internal/logger"
)

// MaxEmbedLength is the maximum text length (in bytes) per provider
// call. Longer texts are split into ordered parts, each embedded
// separately.
const MaxEmbedLength = 30000

// embedBatchSize is the number of texts processed per batch.
// Fixed, not derived from payload size.
const embedBatchSize = 5

// Embedder batches calls to the embedding provider. A provider failure
// for a single item substitutes a zero vector of the provider dimension
// instead of failing the whole batch: a corrupted embedding ranks last
// by cosine similarity almost everywhere, which is an acceptable
// failure mode for bulk ingestion.
type Embedder struct {
	provider driven.EmbeddingService
}

// NewEmbedder creates an embedder over the given provider.
func NewEmbedder(provider driven.EmbeddingService) *Embedder {
	return &Embedder{provider: provider}
}

// Dimensions returns the provider's vector size.
func (e *Embedder) Dimensions() int {
	return e.provider.Dimensions()
}

// EmbedOne embeds a single text. Provider failures propagate; callers
// on the primary retrieval path must treat them as retrieval failures.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return e.provider.Embed(ctx, text)
}

// EmbedMany embeds texts in fixed-size batches, one vector per input in
// the same order. Texts exceeding MaxEmbedLength are split into ordered
// parts, each embedded separately and flattened into the output; callers
// that pre-split chunks must reassemble on their own. Per-item provider
// failures yield zero vectors and are logged, never returned.
//
// The only returned error is context cancellation.
func (e *Embedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	logger.Debug("Embedding %d texts", len(texts))

	// Flatten oversized texts into parts first so batches stay fixed-size.
	var parts []string
	for _, text := range texts {
		if len(text) > MaxEmbedLength {
			logger.Warn("Splitting oversized text of length %d", len(text))
			parts = append(parts, SplitText(text, MaxEmbedLength)...)
		} else {
			parts = append(parts, text)
		}
	}

	embeddings := make([][]float32, 0, len(parts))
	for start := 0; start < len(parts); start += embedBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + embedBatchSize
		if end > len(parts) {
			end = len(parts)
		}
		embeddings = append(embeddings, e.embedBatch(ctx, parts[start:end])...)
	}

	logger.Debug("Embedded %d parts", len(embeddings))
	return embeddings, nil
}

// embedBatch embeds one batch, substituting zero vectors for failures.
func (e *Embedder) embedBatch(ctx context.Context, batch []string) [][]float32 {
	out := make([][]float32, 0, len(batch))
	for _, text := range batch {
		vec, err := e.provider.Embed(ctx, text)
		if err != nil {
			logger.Warn("Embedding failed, substituting zero vector: %v", err)
			vec = make([]float32, e.provider.Dimensions())
		}
		out = append(out, vec)
	}
	return out
}

// SplitText splits text into ordered parts of at most max bytes.
// Concatenating the parts in order reconstitutes the original text.
func SplitText(text string, max int) []string {
	if max <= 0 || len(text) <= max {
		return []string{text}
	}
	parts := make([]string, 0, len(text)/max+1)
	for start := 0; start < len(text); start += max {
		end := start + max
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[start:end])
	}
	return parts
}
