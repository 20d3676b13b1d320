package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
//
// The error-handling contract is asymmetric: retrieval and
// generation failures propagate to the caller, while best-effort steps
// (query correction, decomposition, per-item embedding, media filtering)
// degrade to identity behaviour and never surface here.
var (
	// ErrInvalidRequest indicates a malformed request (blank question,
	// invalid top_k). Rejected before any retrieval work.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRetrieval indicates the primary retrieval path failed
	// (embedding error, store unavailable, malformed filter).
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates answer generation failed. This is often a
	// legitimate "not found in document" outcome rather than a system
	// fault, so it always carries a human-readable reason.
	ErrGeneration = errors.New("generation failed")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a duplicate upload (matching file hash).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnsupportedType indicates an unsupported file extension.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrTooLarge indicates the uploaded file exceeds the size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrNoContent indicates no usable chunks were extracted from an
	// uploaded document.
	ErrNoContent = errors.New("no content extracted")
)
