package domain

// PageUnknown marks chunks from unpaginated sources.
const PageUnknown = -1

// ChunkKind categorises a chunk's content modality.
type ChunkKind string

// Chunk kinds.
const (
	// ChunkText is plain prose.
	ChunkText ChunkKind = "text"
	// ChunkTable is tabular content carrying its markdown rendering.
	ChunkTable ChunkKind = "table"
	// ChunkImage is an image reference; Content holds the caption or a
	// textual surrogate used for embedding.
	ChunkImage ChunkKind = "image"
)

// Valid reports whether the kind is one of the known chunk kinds.
func (k ChunkKind) Valid() bool {
	switch k {
	case ChunkText, ChunkTable, ChunkImage:
		return true
	}
	return false
}

// TableMeta holds table-specific chunk metadata.
type TableMeta struct {
	// Markdown is the verbatim markdown rendering of the table.
	Markdown string `json:"markdown"`
}

// ImageMeta holds image-specific chunk metadata.
type ImageMeta struct {
	// Width and Height are pixel dimensions, 0 when unknown.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Format is the image format (png, jpeg), empty when unknown.
	Format string `json:"format,omitempty"`

	// Caption is the descriptive text attached to the image.
	Caption string `json:"caption,omitempty"`

	// URI locates the image within the source document.
	URI string `json:"uri,omitempty"`
}

// Chunk is a unit of document content stored for retrieval.
type Chunk struct {
	// DocumentID identifies the owning document.
	DocumentID string `json:"document_id"`

	// Content is the chunk text. For images this is the embedding
	// surrogate (caption or URI), never binary data.
	Content string `json:"content"`

	// Kind is the content modality.
	Kind ChunkKind `json:"kind"`

	// Page is the 1-based source page, or PageUnknown.
	Page int `json:"page"`

	// Position is the chunk's 0-based order within the document.
	Position int `json:"position"`

	// Table is set for table chunks only.
	Table *TableMeta `json:"table,omitempty"`

	// Image is set for image chunks only.
	Image *ImageMeta `json:"image,omitempty"`
}

// RetrievedChunk is a chunk returned from a similarity search.
type RetrievedChunk struct {
	// ID is the stored chunk identifier.
	ID string `json:"id"`

	// Chunk is the reconstructed chunk.
	Chunk Chunk `json:"chunk"`

	// Score is the similarity score (1 - distance; higher is better).
	Score float64 `json:"score"`
}
