package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/quaero-labs/quaero/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory vector store using brute-force cosine
// similarity. Intended for tests and small ephemeral corpora.
type VectorStore struct {
	mu       sync.RWMutex
	records  map[string]driven.VectorRecord
	embedder driven.EmbeddingService
}

// NewVectorStore creates an empty in-memory vector store. embedder may
// be nil if QueryText is never used.
func NewVectorStore(embedder driven.EmbeddingService) *VectorStore {
	return &VectorStore{
		records:  make(map[string]driven.VectorRecord),
		embedder: embedder,
	}
}

// Add upserts records.
func (s *VectorStore) Add(_ context.Context, records []driven.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

// QueryEmbedding returns the k most similar records matching the
// filter, best first.
func (s *VectorStore) QueryEmbedding(_ context.Context, embedding []float32, k int, where map[string]string) ([]driven.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.VectorHit
	for _, r := range s.records {
		if !matches(r.Metadata, where) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: cosine(embedding, r.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// QueryText embeds the text and delegates to QueryEmbedding.
func (s *VectorStore) QueryText(ctx context.Context, text string, k int, where map[string]string) ([]driven.VectorHit, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.QueryEmbedding(ctx, embedding, k, where)
}

// GetWhere returns up to limit records matching the filter.
func (s *VectorStore) GetWhere(_ context.Context, where map[string]string, limit int) ([]driven.VectorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []driven.VectorRecord
	for _, r := range s.records {
		if !matches(r.Metadata, where) {
			continue
		}
		records = append(records, r)
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

// DeleteWhere removes all records matching the filter.
func (s *VectorStore) DeleteWhere(_ context.Context, where map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, r := range s.records {
		if matches(r.Metadata, where) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}

// Len returns the number of stored records.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// matches reports whether metadata satisfies every equality predicate
// in where.
func matches(metadata, where map[string]string) bool {
	for k, v := range where {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// cosine computes the cosine similarity of two vectors. Mismatched or
// zero-norm vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
