package driven

import "context"

// VectorRecord is a stored vector entry with its content and metadata.
// Metadata values are scalar-coerced strings; absent values are stored
// as the literal "unknown" so downstream filters can always match.
type VectorRecord struct {
	// ID is the unique record identifier.
	ID string

	// Embedding is the vector representation.
	Embedding []float32

	// Content is the embedded text.
	Content string

	// Metadata holds flattened chunk metadata (kind, page, document_id,
	// file_hash, and kind-specific fields).
	Metadata map[string]string
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ID is the matched record.
	ID string

	// Content is the stored text.
	Content string

	// Metadata is the stored metadata.
	Metadata map[string]string

	// Similarity is the cosine similarity (1 - distance; higher is better).
	Similarity float64
}

// VectorStore persists embedded chunks and serves nearest-neighbour
// queries with metadata filters. Filters are conjunctions of equality
// predicates on metadata fields. Backed by chromem-go.
type VectorStore interface {
	// Add inserts records. Partial writes are not rolled back on failure.
	Add(ctx context.Context, records []VectorRecord) error

	// QueryEmbedding finds the k nearest neighbours to the query vector,
	// restricted to records matching the where filter.
	QueryEmbedding(ctx context.Context, embedding []float32, k int, where map[string]string) ([]VectorHit, error)

	// QueryText embeds the text with the store's embedding function and
	// performs the same search as QueryEmbedding.
	QueryText(ctx context.Context, text string, k int, where map[string]string) ([]VectorHit, error)

	// GetWhere returns up to limit records matching the filter.
	// Result order is store-native and unspecified.
	GetWhere(ctx context.Context, where map[string]string, limit int) ([]VectorRecord, error)

	// DeleteWhere removes all records matching the filter and returns
	// how many were removed.
	DeleteWhere(ctx context.Context, where map[string]string) (int, error)

	// Close releases resources.
	Close() error
}
