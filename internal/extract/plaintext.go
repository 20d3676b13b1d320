package extract

import (
	"strings"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

// DefaultChunkSize is the target number of characters per text chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the number of overlapping characters between
// consecutive chunks.
const DefaultChunkOverlap = 200

// PlainText splits plain text files into fixed-size overlapping
// passages.
type PlainText struct {
	chunkSize int
	overlap   int
}

// PlainTextOption configures the plain text extractor.
type PlainTextOption func(*PlainText)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) PlainTextOption {
	return func(p *PlainText) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) PlainTextOption {
	return func(p *PlainText) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// NewPlainText creates a plain text extractor.
func NewPlainText(opts ...PlainTextOption) *PlainText {
	p := &PlainText{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	return p
}

// Extract splits the file into text chunks. Plain text sources carry
// no pagination.
func (p *PlainText) Extract(_ string, data []byte) ([]domain.Chunk, error) {
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}

	parts := splitFixed(content, p.chunkSize, p.overlap)
	chunks := make([]domain.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = domain.Chunk{
			Content:  part,
			Kind:     domain.ChunkText,
			Page:     domain.PageUnknown,
			Position: i,
		}
	}
	return chunks, nil
}

// splitFixed splits content into chunks of at most size characters
// with the given overlap between consecutive chunks.
func splitFixed(content string, size, overlap int) []string {
	if len(content) <= size {
		return []string{content}
	}

	step := size - overlap
	if step <= 0 {
		step = size
	}

	parts := make([]string, 0, len(content)/step+1)
	for start := 0; start < len(content); start += step {
		end := start + size
		if end > len(content) {
			end = len(content)
		}
		parts = append(parts, content[start:end])
		if end == len(content) {
			break
		}
	}
	return parts
}
