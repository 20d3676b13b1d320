// Package chromem provides a vector store backed by the embedded
// chromem-go database. Persistence is optional: an empty path yields
// an in-memory store.
package chromem

import (
	"context"
	"fmt"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/quaero-labs/quaero/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const collectionName = "quaero_chunks"

// Store is a chromem-go backed vector store.
type Store struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	embedder   driven.EmbeddingService
}

// New creates a vector store. path is the persistence directory; an
// empty path keeps everything in memory. The embedding service powers
// text queries and metadata scans.
func New(path string, embedder driven.EmbeddingService) (*Store, error) {
	var db *chromemgo.DB
	var err error
	if path == "" {
		db = chromemgo.NewDB()
	} else {
		db, err = chromemgo.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open vector db at %s: %w", path, err)
		}
	}

	embedFn := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(collectionName, map[string]string{
		"hnsw:space": "cosine",
	}, embedFn)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", collectionName, err)
	}

	return &Store{db: db, collection: collection, embedder: embedder}, nil
}

// Add upserts records into the collection.
func (s *Store) Add(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	metadatas := make([]map[string]string, len(records))
	contents := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
		embeddings[i] = r.Embedding
		metadatas[i] = r.Metadata
		contents[i] = r.Content
	}

	if err := s.collection.Add(ctx, ids, embeddings, metadatas, contents); err != nil {
		return fmt.Errorf("add %d records: %w", len(records), err)
	}
	return nil
}

// QueryEmbedding returns the k nearest records to the embedding,
// optionally restricted by exact-match metadata filters.
func (s *Store) QueryEmbedding(ctx context.Context, embedding []float32, k int, where map[string]string) ([]driven.VectorHit, error) {
	k = s.clamp(k)
	if k == 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	return toHits(results), nil
}

// QueryText embeds the text with the collection's embedding function
// and returns the k nearest records.
func (s *Store) QueryText(ctx context.Context, text string, k int, where map[string]string) ([]driven.VectorHit, error) {
	k = s.clamp(k)
	if k == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, text, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query text: %w", err)
	}
	return toHits(results), nil
}

// GetWhere returns up to limit records matching the metadata filter.
// chromem has no metadata-only scan, so a fixed probe vector stands in
// for the query; result order is meaningless.
func (s *Store) GetWhere(ctx context.Context, where map[string]string, limit int) ([]driven.VectorRecord, error) {
	k := s.clamp(limit)
	if k == 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, s.probeVector(), k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("scan metadata: %w", err)
	}

	records := make([]driven.VectorRecord, len(results))
	for i, r := range results {
		records[i] = driven.VectorRecord{
			ID:        r.ID,
			Embedding: r.Embedding,
			Content:   r.Content,
			Metadata:  r.Metadata,
		}
	}
	return records, nil
}

// DeleteWhere removes all records matching the metadata filter and
// reports how many were removed.
func (s *Store) DeleteWhere(ctx context.Context, where map[string]string) (int, error) {
	before := s.collection.Count()
	if before == 0 {
		return 0, nil
	}
	if err := s.collection.Delete(ctx, where, nil); err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	return before - s.collection.Count(), nil
}

// Close releases the store. chromem persists writes as they happen, so
// there is nothing to flush.
func (s *Store) Close() error {
	return nil
}

// clamp bounds k to the collection size; chromem rejects queries
// asking for more results than stored records.
func (s *Store) clamp(k int) int {
	if count := s.collection.Count(); k > count {
		return count
	}
	return k
}

// probeVector is a unit vector used for metadata scans where the
// ranking does not matter.
func (s *Store) probeVector() []float32 {
	v := make([]float32, s.embedder.Dimensions())
	if len(v) > 0 {
		v[0] = 1
	}
	return v
}

func toHits(results []chromemgo.Result) []driven.VectorHit {
	if len(results) == 0 {
		return nil
	}
	hits := make([]driven.VectorHit, len(results))
	for i, r := range results {
		hits[i] = driven.VectorHit{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: float64(r.Similarity),
		}
	}
	return hits
}
