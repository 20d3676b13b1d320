package driven

import (
	"context"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

// DocumentRegistry persists upload metadata for ingested documents.
// Backed by SQLite. Chunk content lives in the VectorStore; the
// registry only serves listing and duplicate reporting.
type DocumentRegistry interface {
	// Save stores a document record.
	Save(ctx context.Context, info *domain.DocumentInfo) error

	// Get retrieves a document record by ID.
	// Returns domain.ErrNotFound if no record exists.
	Get(ctx context.Context, id string) (*domain.DocumentInfo, error)

	// List returns all document records, newest first.
	List(ctx context.Context) ([]domain.DocumentInfo, error)

	// Delete removes a document record. Deleting a missing record
	// is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
