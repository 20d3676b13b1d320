package driving

import (
	"context"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

// IngestService manages documents in the corpus.
type IngestService interface {
	// IngestFile reads, validates and indexes a file from disk.
	// documentID may be empty; a stable ID derived from the file hash
	// is assigned. Returns domain.ErrAlreadyExists for duplicate
	// uploads (matching file hash).
	IngestFile(ctx context.Context, path, documentID string) (*domain.DocumentInfo, error)

	// IngestBytes validates and indexes in-memory file content.
	// name must carry the original file extension.
	IngestBytes(ctx context.Context, name string, data []byte, documentID string) (*domain.DocumentInfo, error)

	// Delete removes a document's chunks and registry record.
	// Returns domain.ErrNotFound if no chunks carried the ID.
	Delete(ctx context.Context, documentID string) error

	// List returns registry records for all ingested documents.
	List(ctx context.Context) ([]domain.DocumentInfo, error)
}
