package domain

import "time"

// DocumentInfo is the registry record for an ingested document.
// Chunk content itself lives in the vector store; the registry only
// keeps upload metadata for listing and duplicate reporting.
type DocumentInfo struct {
	// ID is the document identifier carried by every chunk.
	ID string `json:"id"`

	// Name is the original file name.
	Name string `json:"name"`

	// FileHash is the SHA-256 hex digest of the source file,
	// used for duplicate-upload detection.
	FileHash string `json:"file_hash"`

	// Pages is the number of paginated chunks, 0 for unpaginated sources.
	Pages int `json:"pages"`

	// Chunks is the number of chunks stored for this document.
	Chunks int `json:"chunks"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`
}
