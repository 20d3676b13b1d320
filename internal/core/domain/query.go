package domain

// Source is a provenance reference attached to an answer.
type Source struct {
	// DocumentID identifies the source document.
	DocumentID string `json:"document_id"`

	// Page is the 1-based source page, or PageUnknown.
	Page int `json:"page"`

	// Kind is the modality of the supporting chunk.
	Kind ChunkKind `json:"kind"`
}

// PayloadKind categorises the structured portion of an answer.
type PayloadKind string

// Payload kinds. Classification is table-first: an answer containing
// both a table fence and image references is a table payload.
const (
	PayloadText  PayloadKind = "text"
	PayloadTable PayloadKind = "table"
	PayloadImage PayloadKind = "image"
)

// StructuredPayload is the machine-readable classification of a
// generated answer.
type StructuredPayload struct {
	// Kind is the detected payload kind.
	Kind PayloadKind `json:"type"`

	// Content is the extracted payload: the fenced table body for
	// tables, otherwise the full answer text.
	Content string `json:"content"`

	// Format names the content encoding ("markdown" for tables).
	Format string `json:"format,omitempty"`

	// References lists image descriptions referenced by the answer.
	References []string `json:"references,omitempty"`
}

// Answer is the pipeline's final response to a question.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"answer"`

	// Sources lists supporting chunks in the order they were fed to
	// generation.
	Sources []Source `json:"sources"`

	// Structured is the classified response payload.
	Structured *StructuredPayload `json:"formatted_response,omitempty"`
}
