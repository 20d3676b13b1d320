package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driven"
)

// fakeVectorStore is an in-memory vector store scoring hits by dot
// product, so tests control similarity through the seeded embeddings.
type fakeVectorStore struct {
	mu      sync.Mutex
	records map[string]driven.VectorRecord

	addErr    error
	queryErr  error
	getErr    error
	deleteErr error
}

var _ driven.VectorStore = (*fakeVectorStore)(nil)

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{records: make(map[string]driven.VectorRecord)}
}

func (f *fakeVectorStore) Add(_ context.Context, records []driven.VectorRecord) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		f.records[r.ID] = r
	}
	return nil
}

func (f *fakeVectorStore) QueryEmbedding(_ context.Context, embedding []float32, k int, where map[string]string) ([]driven.VectorHit, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var hits []driven.VectorHit
	for _, r := range f.records {
		if !metadataMatches(r.Metadata, where) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: dot(embedding, r.Embedding),
		})
	}
	sortHitsByScore(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (f *fakeVectorStore) QueryText(ctx context.Context, _ string, k int, where map[string]string) ([]driven.VectorHit, error) {
	return f.QueryEmbedding(ctx, []float32{1}, k, where)
}

func (f *fakeVectorStore) GetWhere(_ context.Context, where map[string]string, limit int) ([]driven.VectorRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var records []driven.VectorRecord
	for _, r := range f.records {
		if !metadataMatches(r.Metadata, where) {
			continue
		}
		records = append(records, r)
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

func (f *fakeVectorStore) DeleteWhere(_ context.Context, where map[string]string) (int, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for id, r := range f.records {
		if metadataMatches(r.Metadata, where) {
			delete(f.records, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeVectorStore) Close() error { return nil }

func metadataMatches(metadata, where map[string]string) bool {
	for k, v := range where {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := 0; i < len(a) && i < len(b); i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func sortHitsByScore(hits []driven.VectorHit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Similarity > hits[j-1].Similarity; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// mockEmbedding is a scripted embedding provider. Unknown texts embed
// to a fixed unit vector; texts in failOn fail.
type mockEmbedding struct {
	mu      sync.Mutex
	dims    int
	vectors map[string][]float32
	failOn  map[string]bool
	err     error
	calls   int
}

var _ driven.EmbeddingService = (*mockEmbedding)(nil)

func newMockEmbedding() *mockEmbedding {
	return &mockEmbedding{
		dims:    2,
		vectors: make(map[string][]float32),
		failOn:  make(map[string]bool),
	}
}

func (m *mockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.failOn[text] {
		return nil, errors.New("embedding provider unavailable")
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	v := make([]float32, m.dims)
	v[0] = 1
	return v, nil
}

func (m *mockEmbedding) Dimensions() int { return m.dims }

func (m *mockEmbedding) ModelName() string { return "mock-embed" }

func (m *mockEmbedding) Ping(_ context.Context) error { return nil }

func (m *mockEmbedding) Close() error { return nil }

func (m *mockEmbedding) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockGeneration is a scripted generation provider. Responses are
// selected by prompt substring.
type mockGeneration struct {
	mu        sync.Mutex
	responses map[string]string
	fallback  string
	err       error
	calls     int
	prompts   []string
}

var _ driven.GenerationService = (*mockGeneration)(nil)

func newMockGeneration() *mockGeneration {
	return &mockGeneration{responses: make(map[string]string), fallback: "ok"}
}

func (m *mockGeneration) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	for needle, response := range m.responses {
		if strings.Contains(prompt, needle) {
			return response, nil
		}
	}
	return m.fallback, nil
}

func (m *mockGeneration) ModelName() string { return "mock-llm" }

func (m *mockGeneration) Ping(_ context.Context) error { return nil }

func (m *mockGeneration) Close() error { return nil }

func (m *mockGeneration) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockPrompts serves fixed templates keyed by prompt name.
type mockPrompts struct {
	templates map[string]string
	err       error
}

var _ driven.PromptStore = (*mockPrompts)(nil)

func newMockPrompts() *mockPrompts {
	return &mockPrompts{templates: map[string]string{
		driven.PromptCorrection:     "correct: %s",
		driven.PromptDecompose:      "decompose: %s",
		driven.PromptAnswer:         "question: %s\ncontext: %s",
		driven.PromptMediaRelevance: "answer: %s\nmedia: %s",
	}}
}

func (m *mockPrompts) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	template, ok := m.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return template, nil
}

func (m *mockPrompts) Reload() {}

// fakeRegistry is an in-memory document registry.
type fakeRegistry struct {
	mu   sync.Mutex
	docs map[string]domain.DocumentInfo

	saveErr error
}

var _ driven.DocumentRegistry = (*fakeRegistry)(nil)

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{docs: make(map[string]domain.DocumentInfo)}
}

func (f *fakeRegistry) Save(_ context.Context, info *domain.DocumentInfo) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[info.ID] = *info
	return nil
}

func (f *fakeRegistry) Get(_ context.Context, id string) (*domain.DocumentInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return &info, nil
}

func (f *fakeRegistry) List(_ context.Context) ([]domain.DocumentInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := make([]domain.DocumentInfo, 0, len(f.docs))
	for _, info := range f.docs {
		docs = append(docs, info)
	}
	return docs, nil
}

func (f *fakeRegistry) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeRegistry) Close() error { return nil }
