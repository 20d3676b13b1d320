package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/logger"
)

// Default retrieval bounds, matching the original system.
const (
	DefaultTopK    = 5
	DefaultTopDocs = 3
)

// Retriever performs two-stage retrieval: rank candidate documents,
// then rank chunks within the selected documents. It is state-free per
// call; any embedding or store failure at either stage aborts the whole
// retrieval, never returning partial results as success.
type Retriever struct {
	chunks   *ChunkStore
	embedder *Embedder
	topK     int
	topDocs  int
}

// NewRetriever creates a retriever. Non-positive bounds fall back to
// the defaults.
func NewRetriever(chunks *ChunkStore, embedder *Embedder, topK, topDocs int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topDocs <= 0 {
		topDocs = DefaultTopDocs
	}
	return &Retriever{chunks: chunks, embedder: embedder, topK: topK, topDocs: topDocs}
}

// Retrieve returns the top chunks for a question. When scope is
// non-empty it is used verbatim as the document set and the document
// stage is skipped.
func (r *Retriever) Retrieve(ctx context.Context, question string, scope []string) ([]domain.RetrievedChunk, error) {
	logger.Section("Retrieval")
	logger.Debug("Question: %q, scope: %v", question, scope)

	embedding, err := r.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", domain.ErrRetrieval, err)
	}

	docIDs := scope
	if len(docIDs) == 0 {
		docIDs, err = r.topDocuments(ctx, embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: document stage: %w", domain.ErrRetrieval, err)
		}
	} else {
		logger.Debug("Using caller-supplied scope, skipping document stage")
	}

	results, err := r.topChunks(ctx, embedding, docIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk stage: %w", domain.ErrRetrieval, err)
	}

	logger.Info("Selected %d chunks for generation", len(results))
	return results, nil
}

// topDocuments ranks documents across the whole corpus by the maximum
// chunk score seen per document. Maximum, not average: a single highly
// relevant chunk qualifies its parent document even when the document's
// other chunks are irrelevant. Tie order is store-native.
func (r *Retriever) topDocuments(ctx context.Context, embedding []float32) ([]string, error) {
	logger.Debug("Running document-level retrieval (top %d)", r.topDocs)

	hits, err := r.chunks.Query(ctx, ChunkQuery{Embedding: embedding, Limit: r.topDocs})
	if err != nil {
		return nil, err
	}

	maxScore := make(map[string]float64)
	var order []string
	for _, hit := range hits {
		id := hit.Chunk.DocumentID
		if id == "" {
			continue
		}
		if score, seen := maxScore[id]; !seen || hit.Score > score {
			if !seen {
				order = append(order, id)
			}
			maxScore[id] = hit.Score
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return maxScore[order[i]] > maxScore[order[j]]
	})

	logger.Info("Top matching documents: %v", order)
	return order, nil
}

// topChunks queries each selected document concurrently, merges the
// result sets and truncates to topK by score. A single document can
// dominate all slots if its chunks score highest; relevance wins over
// per-document fairness.
func (r *Retriever) topChunks(ctx context.Context, embedding []float32, docIDs []string) ([]domain.RetrievedChunk, error) {
	if len(docIDs) == 0 {
		return nil, nil
	}
	logger.Debug("Retrieving top chunks from documents: %v", docIDs)

	perDoc := make([][]domain.RetrievedChunk, len(docIDs))
	errs := make([]error, len(docIDs))

	var wg sync.WaitGroup
	for i, docID := range docIDs {
		wg.Add(1)
		go func(i int, docID string) {
			defer wg.Done()
			perDoc[i], errs[i] = r.chunks.Query(ctx, ChunkQuery{
				Embedding:  embedding,
				DocumentID: docID,
				Limit:      r.topK,
			})
		}(i, docID)
	}
	wg.Wait()

	var merged []domain.RetrievedChunk
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("query document %s: %w", docIDs[i], err)
		}
		merged = append(merged, perDoc[i]...)
	}

	sortByScoreDesc(merged)
	if len(merged) > r.topK {
		merged = merged[:r.topK]
	}

	// The store already substitutes captions; anything still blank is
	// filtered here, not treated as an error.
	filtered := merged[:0]
	for _, c := range merged {
		if strings.TrimSpace(c.Chunk.Content) == "" {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered, nil
}

// sortByScoreDesc sorts results by score descending, preserving
// store-native order on ties.
func sortByScoreDesc(results []domain.RetrievedChunk) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
