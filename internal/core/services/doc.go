// Package services implements the retrieval-and-answer pipeline:
// embedding batching, the chunk store facade, query rewriting,
// two-stage retrieval, answer composition, media relevance filtering
// and the answer cache.
package services
