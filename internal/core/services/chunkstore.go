package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driven"
	"github.com/quaero-labs/quaero/internal/logger"
)

// MaxChunkLength is the maximum chunk content length before splitting.
// Text and table chunks above this are split into ordered sub-chunks
// sharing the parent's metadata; image chunks are never split.
const MaxChunkLength = 30000

// Metadata keys used in the vector store.
const (
	metaKind       = "kind"
	metaPage       = "page"
	metaDocumentID = "document_id"
	metaFileHash   = "file_hash"
	metaPosition   = "position"
	metaMarkdown   = "markdown"
	metaCaption    = "caption"
	metaURI        = "uri"
	metaWidth      = "width"
	metaHeight     = "height"
	metaFormat     = "format"
)

// metaUnknown is the sentinel for absent metadata values. Absent values
// never normalise to something a downstream filter cannot match on.
const metaUnknown = "unknown"

// ChunkStore is the typed facade over the vector store: add,
// deduplicate-by-hash, similarity query with metadata filters,
// delete-by-document.
type ChunkStore struct {
	store    driven.VectorStore
	embedder *Embedder
}

// NewChunkStore creates a chunk store over the given vector store and embedder.
func NewChunkStore(store driven.VectorStore, embedder *Embedder) *ChunkStore {
	return &ChunkStore{store: store, embedder: embedder}
}

// Add embeds and persists chunks for a document. Empty chunks are
// dropped, oversized text/table chunks are split, and every record
// carries kind, page, document_id and file_hash metadata. Write
// failures propagate; partial writes are not rolled back.
//
// Returns the number of records written.
func (s *ChunkStore) Add(ctx context.Context, chunks []domain.Chunk, documentID, fileHash string) (int, error) {
	logger.Info("Adding %d chunks for document %s", len(chunks), documentID)

	prepared := s.prepare(chunks)
	if len(prepared) == 0 {
		return 0, nil
	}

	texts := make([]string, len(prepared))
	for i, c := range prepared {
		texts[i] = embeddingSurrogate(c)
	}

	embeddings, err := s.embedder.EmbedMany(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	records := make([]driven.VectorRecord, len(prepared))
	for i, c := range prepared {
		records[i] = driven.VectorRecord{
			// (document_id, sequence_index) forms the stable chunk key.
			ID:        fmt.Sprintf("%s_chunk_%d", documentID, i),
			Embedding: embeddings[i],
			Content:   c.Content,
			Metadata:  flattenMetadata(c, documentID, fileHash),
		}
	}

	if err := s.store.Add(ctx, records); err != nil {
		return 0, fmt.Errorf("add chunks for document %s: %w", documentID, err)
	}

	logger.Info("Stored %d records for document %s", len(records), documentID)
	return len(records), nil
}

// prepare drops blank chunks and splits oversized text/table chunks
// into ordered sub-chunks sharing the parent's metadata.
func (s *ChunkStore) prepare(chunks []domain.Chunk) []domain.Chunk {
	prepared := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			logger.Warn("Dropping chunk with empty content (document %s, position %d)", c.DocumentID, c.Position)
			continue
		}
		if c.Kind != domain.ChunkImage && len(c.Content) > MaxChunkLength {
			for _, part := range SplitText(c.Content, MaxChunkLength) {
				sub := c
				sub.Content = part
				prepared = append(prepared, sub)
			}
			continue
		}
		prepared = append(prepared, c)
	}
	return prepared
}

// embeddingSurrogate returns the text to embed for a chunk. Image
// chunks embed a textual surrogate since the embedding provider only
// accepts text: the URI, falling back to the literal "image".
func embeddingSurrogate(c domain.Chunk) string {
	if c.Kind == domain.ChunkImage {
		if c.Image != nil && c.Image.URI != "" {
			return c.Image.URI
		}
		return "image"
	}
	return c.Content
}

// flattenMetadata coerces chunk metadata to the store's string map.
func flattenMetadata(c domain.Chunk, documentID, fileHash string) map[string]string {
	m := map[string]string{
		metaKind:       string(c.Kind),
		metaPage:       strconv.Itoa(c.Page),
		metaDocumentID: documentID,
		metaPosition:   strconv.Itoa(c.Position),
	}
	if fileHash != "" {
		m[metaFileHash] = fileHash
	}
	switch c.Kind {
	case domain.ChunkTable:
		if c.Table != nil {
			m[metaMarkdown] = coerce(c.Table.Markdown)
		}
	case domain.ChunkImage:
		if c.Image != nil {
			m[metaCaption] = coerce(c.Image.Caption)
			m[metaURI] = coerce(c.Image.URI)
			m[metaFormat] = coerce(c.Image.Format)
			m[metaWidth] = strconv.Itoa(c.Image.Width)
			m[metaHeight] = strconv.Itoa(c.Image.Height)
		}
	}
	return m
}

// coerce normalises an absent value to the "unknown" sentinel.
func coerce(v string) string {
	if strings.TrimSpace(v) == "" {
		return metaUnknown
	}
	return v
}

// ContainsHash reports whether any stored chunk carries the file hash.
// Used to reject duplicate uploads before processing cost is spent.
func (s *ChunkStore) ContainsHash(ctx context.Context, fileHash string) (bool, error) {
	records, err := s.store.GetWhere(ctx, map[string]string{metaFileHash: fileHash}, 1)
	if err != nil {
		return false, fmt.Errorf("probe file hash: %w", err)
	}
	return len(records) > 0, nil
}

// ChunkQuery is a similarity query against the chunk store.
// Exactly one of Text and Embedding must be supplied.
type ChunkQuery struct {
	Text       string
	Embedding  []float32
	DocumentID string
	Kinds      []domain.ChunkKind
	Limit      int
}

// Query runs a similarity search and hydrates the hits into chunks.
// Hits with empty content but a caption in metadata substitute the
// caption as content; hits with neither are dropped, not errors.
// Results are ordered by score descending with store-native tie order.
func (s *ChunkStore) Query(ctx context.Context, q ChunkQuery) ([]domain.RetrievedChunk, error) {
	hasText := strings.TrimSpace(q.Text) != ""
	hasEmbedding := len(q.Embedding) > 0
	if hasText == hasEmbedding {
		return nil, fmt.Errorf("%w: exactly one of text and embedding must be supplied", domain.ErrInvalidRequest)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 5
	}

	where := make(map[string]string)
	if q.DocumentID != "" {
		where[metaDocumentID] = q.DocumentID
	}

	// The store's filters are equality-only; kind set-membership is
	// satisfied by one query per kind merged by score.
	var hits []driven.VectorHit
	var err error
	switch len(q.Kinds) {
	case 0:
		hits, err = s.query(ctx, q, limit, where)
	case 1:
		where[metaKind] = string(q.Kinds[0])
		hits, err = s.query(ctx, q, limit, where)
	default:
		for _, kind := range q.Kinds {
			kindWhere := make(map[string]string, len(where)+1)
			for k, v := range where {
				kindWhere[k] = v
			}
			kindWhere[metaKind] = string(kind)
			kindHits, kindErr := s.query(ctx, q, limit, kindWhere)
			if kindErr != nil {
				err = kindErr
				break
			}
			hits = append(hits, kindHits...)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}

	results := hydrateHits(hits)
	sortByScoreDesc(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *ChunkStore) query(ctx context.Context, q ChunkQuery, limit int, where map[string]string) ([]driven.VectorHit, error) {
	if len(q.Embedding) > 0 {
		return s.store.QueryEmbedding(ctx, q.Embedding, limit, where)
	}
	return s.store.QueryText(ctx, q.Text, limit, where)
}

// hydrateHits converts store hits into retrieved chunks, applying the
// caption substitution and dropping unusable hits.
func hydrateHits(hits []driven.VectorHit) []domain.RetrievedChunk {
	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		content := strings.TrimSpace(hit.Content)
		if content == "" {
			if caption, ok := hit.Metadata[metaCaption]; ok && caption != metaUnknown && strings.TrimSpace(caption) != "" {
				content = caption
			} else {
				logger.Warn("Skipping chunk with empty content: id=%s", hit.ID)
				continue
			}
		}
		results = append(results, domain.RetrievedChunk{
			ID:    hit.ID,
			Chunk: chunkFromMetadata(content, hit.Metadata),
			Score: hit.Similarity,
		})
	}
	return results
}

// chunkFromMetadata rebuilds a domain chunk from flattened metadata.
func chunkFromMetadata(content string, m map[string]string) domain.Chunk {
	c := domain.Chunk{
		Content:    content,
		DocumentID: m[metaDocumentID],
		Kind:       domain.ChunkKind(m[metaKind]),
		Page:       domain.PageUnknown,
	}
	if !c.Kind.Valid() {
		c.Kind = domain.ChunkText
	}
	if page, err := strconv.Atoi(m[metaPage]); err == nil {
		c.Page = page
	}
	if pos, err := strconv.Atoi(m[metaPosition]); err == nil {
		c.Position = pos
	}
	switch c.Kind {
	case domain.ChunkTable:
		if md, ok := m[metaMarkdown]; ok && md != metaUnknown {
			c.Table = &domain.TableMeta{Markdown: md}
		}
	case domain.ChunkImage:
		img := &domain.ImageMeta{
			Caption: valueOrEmpty(m[metaCaption]),
			URI:     valueOrEmpty(m[metaURI]),
			Format:  valueOrEmpty(m[metaFormat]),
		}
		if w, err := strconv.Atoi(m[metaWidth]); err == nil {
			img.Width = w
		}
		if h, err := strconv.Atoi(m[metaHeight]); err == nil {
			img.Height = h
		}
		c.Image = img
	}
	return c
}

func valueOrEmpty(v string) string {
	if v == metaUnknown {
		return ""
	}
	return v
}

// Delete removes every chunk carrying the document ID. The boolean
// reports whether any existed; false means "not found", not an error.
func (s *ChunkStore) Delete(ctx context.Context, documentID string) (bool, error) {
	n, err := s.store.DeleteWhere(ctx, map[string]string{metaDocumentID: documentID})
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", documentID, err)
	}
	logger.Info("Deleted %d chunks for document %s", n, documentID)
	return n > 0, nil
}
