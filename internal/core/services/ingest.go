package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driven"
	"github.com/quaero-labs/quaero/internal/core/ports/driving"
	"github.com/quaero-labs/quaero/internal/extract"
	"github.com/quaero-labs/quaero/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// MaxFileSize is the upload size limit in bytes.
const MaxFileSize = 10_000_000

// Ingestor validates, deduplicates and indexes documents.
type Ingestor struct {
	chunks     *ChunkStore
	registry   driven.DocumentRegistry
	extractors map[string]extract.Extractor
}

// NewIngestor creates an ingest service. extractors maps lower-case
// file extensions (with dot) to chunk extractors.
func NewIngestor(chunks *ChunkStore, registry driven.DocumentRegistry, extractors map[string]extract.Extractor) *Ingestor {
	return &Ingestor{chunks: chunks, registry: registry, extractors: extractors}
}

// IngestFile reads and indexes a file from disk.
func (s *Ingestor) IngestFile(ctx context.Context, path, documentID string) (*domain.DocumentInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s.IngestBytes(ctx, filepath.Base(path), data, documentID)
}

// IngestBytes validates and indexes in-memory file content.
// The duplicate probe runs before extraction so no processing cost is
// spent on an already-ingested file.
func (s *Ingestor) IngestBytes(ctx context.Context, name string, data []byte, documentID string) (*domain.DocumentInfo, error) {
	logger.Section("Ingest")
	logger.Info("Ingesting %s (%d bytes)", name, len(data))

	ext := strings.ToLower(filepath.Ext(name))
	extractor, ok := s.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrTooLarge, len(data), MaxFileSize)
	}

	fileHash := hashBytes(data)
	exists, err := s.chunks.ContainsHash(ctx, fileHash)
	if err != nil {
		return nil, fmt.Errorf("duplicate probe: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: this document has already been uploaded", domain.ErrAlreadyExists)
	}

	docID := documentID
	if docID == "" {
		docID = fileHash[:16]
	}

	chunks, err := extractor.Extract(name, data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no valid content found in %s", domain.ErrNoContent, name)
	}
	logger.Info("Extracted %d chunks from %s", len(chunks), name)

	stored, err := s.chunks.Add(ctx, chunks, docID, fileHash)
	if err != nil {
		return nil, err
	}

	info := &domain.DocumentInfo{
		ID:        docID,
		Name:      name,
		FileHash:  fileHash,
		Pages:     maxPage(chunks),
		Chunks:    stored,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.registry.Save(ctx, info); err != nil {
		return nil, fmt.Errorf("save registry record: %w", err)
	}
	return info, nil
}

// Delete removes a document's chunks and registry record.
func (s *Ingestor) Delete(ctx context.Context, documentID string) error {
	existed, err := s.chunks.Delete(ctx, documentID)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}
	if err := s.registry.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete registry record: %w", err)
	}
	return nil
}

// List returns registry records for all ingested documents.
func (s *Ingestor) List(ctx context.Context) ([]domain.DocumentInfo, error) {
	return s.registry.List(ctx)
}

// hashBytes returns the SHA-256 hex digest of the file content.
func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// maxPage returns the highest page number seen, or 0 for unpaginated
// sources.
func maxPage(chunks []domain.Chunk) int {
	pages := 0
	for _, c := range chunks {
		if c.Page != domain.PageUnknown && c.Page > pages {
			pages = c.Page
		}
	}
	return pages
}
