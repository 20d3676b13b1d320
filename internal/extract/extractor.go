package extract

import "github.com/quaero-labs/quaero/internal/core/domain"

// Extractor converts file content into ordered chunks.
type Extractor interface {
	// Extract parses the file content into chunks. Positions are
	// assigned sequentially; blank chunks are the chunk store's
	// concern, not the extractor's.
	Extract(name string, data []byte) ([]domain.Chunk, error)
}

// Defaults returns the extractor registry keyed by file extension.
func Defaults() map[string]Extractor {
	plain := NewPlainText()
	md := NewMarkdown()
	return map[string]Extractor{
		".txt":      plain,
		".text":     plain,
		".log":      plain,
		".md":       md,
		".markdown": md,
	}
}
