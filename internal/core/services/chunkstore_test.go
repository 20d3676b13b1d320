package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driven"
)

func newTestChunkStore() (*ChunkStore, *fakeVectorStore, *mockEmbedding) {
	store := newFakeVectorStore()
	provider := newMockEmbedding()
	return NewChunkStore(store, NewEmbedder(provider)), store, provider
}

func TestChunkStoreAdd(t *testing.T) {
	chunks, store, _ := newTestChunkStore()

	n, err := chunks.Add(context.Background(), []domain.Chunk{
		{Content: "first paragraph", Kind: domain.ChunkText, Page: 1},
		{Content: "   ", Kind: domain.ChunkText, Page: 1},
		{Content: "| a |", Kind: domain.ChunkTable, Page: 2, Table: &domain.TableMeta{Markdown: "| a |"}},
	}, "doc1", "hash1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	first, ok := store.records["doc1_chunk_0"]
	require.True(t, ok)
	assert.Equal(t, "first paragraph", first.Content)
	assert.Equal(t, "text", first.Metadata["kind"])
	assert.Equal(t, "1", first.Metadata["page"])
	assert.Equal(t, "doc1", first.Metadata["document_id"])
	assert.Equal(t, "hash1", first.Metadata["file_hash"])

	second, ok := store.records["doc1_chunk_1"]
	require.True(t, ok)
	assert.Equal(t, "table", second.Metadata["kind"])
	assert.Equal(t, "| a |", second.Metadata["markdown"])
}

func TestChunkStoreAddSplitsOversized(t *testing.T) {
	chunks, store, _ := newTestChunkStore()

	n, err := chunks.Add(context.Background(), []domain.Chunk{
		{Content: strings.Repeat("a", MaxChunkLength*2+1), Kind: domain.ChunkText, Page: 1},
	}, "doc1", "hash1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, store.records, 3)
	assert.Contains(t, store.records, "doc1_chunk_2")
}

func TestChunkStoreAddImageSurrogate(t *testing.T) {
	chunks, store, provider := newTestChunkStore()
	provider.vectors["http://example.com/chart.png"] = []float32{0, 1}

	_, err := chunks.Add(context.Background(), []domain.Chunk{
		{
			Content: "revenue chart",
			Kind:    domain.ChunkImage,
			Page:    domain.PageUnknown,
			Image:   &domain.ImageMeta{Caption: "revenue chart", URI: "http://example.com/chart.png"},
		},
	}, "doc1", "hash1")
	require.NoError(t, err)

	record := store.records["doc1_chunk_0"]
	assert.Equal(t, []float32{0, 1}, record.Embedding)
	assert.Equal(t, "revenue chart", record.Metadata["caption"])
	assert.Equal(t, "unknown", record.Metadata["format"])
}

func TestChunkStoreContainsHash(t *testing.T) {
	chunks, _, _ := newTestChunkStore()

	exists, err := chunks.ContainsHash(context.Background(), "hash1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = chunks.Add(context.Background(), []domain.Chunk{
		{Content: "text", Kind: domain.ChunkText, Page: 1},
	}, "doc1", "hash1")
	require.NoError(t, err)

	exists, err = chunks.ContainsHash(context.Background(), "hash1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestChunkStoreQueryValidation(t *testing.T) {
	chunks, _, _ := newTestChunkStore()

	_, err := chunks.Query(context.Background(), ChunkQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = chunks.Query(context.Background(), ChunkQuery{Text: "q", Embedding: []float32{1}})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func seedRecord(store *fakeVectorStore, id, content string, score float32, metadata map[string]string) {
	store.records[id] = driven.VectorRecord{
		ID:        id,
		Embedding: []float32{score, 0},
		Content:   content,
		Metadata:  metadata,
	}
}

func TestChunkStoreQueryOrdersByScore(t *testing.T) {
	chunks, store, _ := newTestChunkStore()
	seedRecord(store, "c0", "low", 0.2, map[string]string{"kind": "text", "page": "1", "document_id": "d1"})
	seedRecord(store, "c1", "high", 0.9, map[string]string{"kind": "text", "page": "2", "document_id": "d1"})
	seedRecord(store, "c2", "mid", 0.5, map[string]string{"kind": "text", "page": "3", "document_id": "d1"})

	results, err := chunks.Query(context.Background(), ChunkQuery{Embedding: []float32{1, 0}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].ID)
	assert.Equal(t, "c2", results[1].ID)
	assert.Equal(t, 2, results[0].Chunk.Page)
}

func TestChunkStoreQueryCaptionSubstitution(t *testing.T) {
	chunks, store, _ := newTestChunkStore()
	seedRecord(store, "c0", "", 0.9, map[string]string{
		"kind": "image", "page": "-1", "document_id": "d1", "caption": "revenue chart", "uri": "unknown",
	})
	seedRecord(store, "c1", "", 0.5, map[string]string{
		"kind": "image", "page": "-1", "document_id": "d1", "caption": "unknown",
	})

	results, err := chunks.Query(context.Background(), ChunkQuery{Embedding: []float32{1, 0}, Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "revenue chart", results[0].Chunk.Content)
	assert.Equal(t, domain.ChunkImage, results[0].Chunk.Kind)
	require.NotNil(t, results[0].Chunk.Image)
	assert.Equal(t, "", results[0].Chunk.Image.URI)
}

func TestChunkStoreQueryKindSet(t *testing.T) {
	chunks, store, _ := newTestChunkStore()
	seedRecord(store, "c0", "prose", 0.9, map[string]string{"kind": "text", "page": "1", "document_id": "d1"})
	seedRecord(store, "c1", "| a |", 0.7, map[string]string{"kind": "table", "page": "1", "document_id": "d1"})
	seedRecord(store, "c2", "chart", 0.8, map[string]string{"kind": "image", "page": "1", "document_id": "d1"})

	results, err := chunks.Query(context.Background(), ChunkQuery{
		Embedding: []float32{1, 0},
		Kinds:     []domain.ChunkKind{domain.ChunkTable, domain.ChunkImage},
		Limit:     5,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c2", results[0].ID)
	assert.Equal(t, "c1", results[1].ID)
}

func TestChunkStoreQueryScopedToDocument(t *testing.T) {
	chunks, store, _ := newTestChunkStore()
	seedRecord(store, "c0", "a", 0.9, map[string]string{"kind": "text", "page": "1", "document_id": "d1"})
	seedRecord(store, "c1", "b", 0.5, map[string]string{"kind": "text", "page": "1", "document_id": "d2"})

	results, err := chunks.Query(context.Background(), ChunkQuery{
		Embedding:  []float32{1, 0},
		DocumentID: "d2",
		Limit:      5,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ID)
}

func TestChunkStoreDelete(t *testing.T) {
	chunks, store, _ := newTestChunkStore()
	seedRecord(store, "c0", "a", 0.9, map[string]string{"kind": "text", "page": "1", "document_id": "d1"})
	seedRecord(store, "c1", "b", 0.5, map[string]string{"kind": "text", "page": "1", "document_id": "d1"})

	existed, err := chunks.Delete(context.Background(), "d1")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Empty(t, store.records)

	existed, err = chunks.Delete(context.Background(), "d1")
	require.NoError(t, err)
	assert.False(t, existed)
}
