// Package httpapi exposes the answer pipeline and document ingestion
// over HTTP. Errors are returned as {"detail": "..."} with a status
// code derived from the domain error.
package httpapi
