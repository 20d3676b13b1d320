// Package memory provides in-memory driven adapters. They back unit
// tests and ephemeral runs where persistence is not wanted.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.DocumentRegistry = (*Registry)(nil)

// Registry is an in-memory document registry.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]domain.DocumentInfo
}

// NewRegistry creates an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]domain.DocumentInfo)}
}

// Save stores or updates a document record.
func (r *Registry) Save(_ context.Context, info *domain.DocumentInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[info.ID] = *info
	return nil
}

// Get retrieves a document record by ID.
func (r *Registry) Get(_ context.Context, id string) (*domain.DocumentInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return &info, nil
}

// List returns all document records, newest first.
func (r *Registry) List(_ context.Context) ([]domain.DocumentInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]domain.DocumentInfo, 0, len(r.docs))
	for _, info := range r.docs {
		docs = append(docs, info)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Delete removes a document record. Missing records are not an error.
func (r *Registry) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

// Close releases resources.
func (r *Registry) Close() error {
	return nil
}
