package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/extract"
)

func newTestIngestor() (*Ingestor, *fakeVectorStore, *fakeRegistry) {
	store := newFakeVectorStore()
	registry := newFakeRegistry()
	chunks := NewChunkStore(store, NewEmbedder(newMockEmbedding()))
	return NewIngestor(chunks, registry, extract.Defaults()), store, registry
}

func TestIngestBytes(t *testing.T) {
	ingestor, store, registry := newTestIngestor()

	info, err := ingestor.IngestBytes(context.Background(), "notes.txt", []byte("some meeting notes"), "")
	require.NoError(t, err)
	assert.Len(t, info.ID, 16)
	assert.Equal(t, "notes.txt", info.Name)
	assert.Len(t, info.FileHash, 64)
	assert.Equal(t, 1, info.Chunks)
	assert.False(t, info.CreatedAt.IsZero())

	assert.Len(t, store.records, 1)
	saved, err := registry.Get(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.FileHash, saved.FileHash)
}

func TestIngestBytesExplicitID(t *testing.T) {
	ingestor, store, _ := newTestIngestor()

	info, err := ingestor.IngestBytes(context.Background(), "notes.txt", []byte("content"), "my-doc")
	require.NoError(t, err)
	assert.Equal(t, "my-doc", info.ID)
	assert.Contains(t, store.records, "my-doc_chunk_0")
}

func TestIngestBytesUnsupportedType(t *testing.T) {
	ingestor, _, _ := newTestIngestor()

	_, err := ingestor.IngestBytes(context.Background(), "scan.pdf", []byte("%PDF"), "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestBytesTooLarge(t *testing.T) {
	ingestor, _, _ := newTestIngestor()

	_, err := ingestor.IngestBytes(context.Background(), "big.txt", bytes.Repeat([]byte("a"), MaxFileSize+1), "")
	assert.ErrorIs(t, err, domain.ErrTooLarge)
}

func TestIngestBytesDuplicate(t *testing.T) {
	ingestor, _, _ := newTestIngestor()
	data := []byte("identical content")

	_, err := ingestor.IngestBytes(context.Background(), "first.txt", data, "")
	require.NoError(t, err)

	_, err = ingestor.IngestBytes(context.Background(), "second.txt", data, "other-id")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestIngestBytesNoContent(t *testing.T) {
	ingestor, _, _ := newTestIngestor()

	_, err := ingestor.IngestBytes(context.Background(), "empty.txt", []byte("   \n  "), "")
	assert.ErrorIs(t, err, domain.ErrNoContent)
}

func TestIngestBytesMarkdown(t *testing.T) {
	ingestor, store, _ := newTestIngestor()
	md := "# Report\n\nSome prose.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n![revenue chart](chart.png)\n"

	info, err := ingestor.IngestBytes(context.Background(), "report.md", []byte(md), "doc1")
	require.NoError(t, err)
	assert.Equal(t, 3, info.Chunks)

	kinds := make(map[string]int)
	for _, r := range store.records {
		kinds[r.Metadata["kind"]]++
	}
	assert.Equal(t, map[string]int{"text": 1, "table": 1, "image": 1}, kinds)
}

func TestIngestFile(t *testing.T) {
	ingestor, _, _ := newTestIngestor()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("file content"), 0o644))

	info, err := ingestor.IngestFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", info.Name)
}

func TestIngestDelete(t *testing.T) {
	ingestor, store, registry := newTestIngestor()

	info, err := ingestor.IngestBytes(context.Background(), "notes.txt", []byte("content"), "")
	require.NoError(t, err)

	require.NoError(t, ingestor.Delete(context.Background(), info.ID))
	assert.Empty(t, store.records)
	_, err = registry.Get(context.Background(), info.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestDeleteNotFound(t *testing.T) {
	ingestor, _, _ := newTestIngestor()

	err := ingestor.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestList(t *testing.T) {
	ingestor, _, _ := newTestIngestor()

	_, err := ingestor.IngestBytes(context.Background(), "a.txt", []byte("first"), "")
	require.NoError(t, err)
	_, err = ingestor.IngestBytes(context.Background(), "b.txt", []byte("second"), "")
	require.NoError(t, err)

	docs, err := ingestor.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
