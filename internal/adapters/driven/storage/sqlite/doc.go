// Package sqlite provides the SQLite-backed document registry.
//
// The registry holds upload metadata only; chunk content and vectors
// live in the vector store. Migrations are embedded and applied on
// open.
package sqlite
