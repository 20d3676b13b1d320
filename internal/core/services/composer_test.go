package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

func textChunk(id, docID, content string, page int, score float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		ID: id,
		Chunk: domain.Chunk{
			DocumentID: docID,
			Content:    content,
			Kind:       domain.ChunkText,
			Page:       page,
		},
		Score: score,
	}
}

func TestComposeSuccess(t *testing.T) {
	llm := newMockGeneration()
	llm.responses["\ncontext:"] = "Revenue grew to $5M. [Page 2]"

	chunks := []domain.RetrievedChunk{
		textChunk("d1_chunk_0", "d1", "revenue table", 2, 0.9),
		textChunk("d2_chunk_1", "d2", "older figures", 7, 0.4),
	}

	answer, err := NewComposer(llm, newMockPrompts()).Compose(context.Background(), "What was revenue?", chunks)
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew to $5M. [Page 2]", answer.Text)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, domain.Source{DocumentID: "d1", Page: 2, Kind: domain.ChunkText}, answer.Sources[0])
	assert.Equal(t, domain.Source{DocumentID: "d2", Page: 7, Kind: domain.ChunkText}, answer.Sources[1])
	require.NotNil(t, answer.Structured)
	assert.Equal(t, domain.PayloadText, answer.Structured.Kind)
}

func TestComposeEmptyContextIsGenerationError(t *testing.T) {
	_, err := NewComposer(newMockGeneration(), newMockPrompts()).Compose(context.Background(), "q", nil)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "no relevant context")
}

func TestComposeLowConfidenceIsGenerationError(t *testing.T) {
	llm := newMockGeneration()
	llm.responses["\ncontext:"] = "I don't know based on the provided context."

	_, err := NewComposer(llm, newMockPrompts()).Compose(context.Background(), "q",
		[]domain.RetrievedChunk{textChunk("c0", "d1", "text", 1, 0.5)})
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "not found in the documents")
}

func TestComposeEmptyOutputIsGenerationError(t *testing.T) {
	llm := newMockGeneration()
	llm.fallback = "  "

	_, err := NewComposer(llm, newMockPrompts()).Compose(context.Background(), "q",
		[]domain.RetrievedChunk{textChunk("c0", "d1", "text", 1, 0.5)})
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestComposeProviderFailureIsGenerationError(t *testing.T) {
	llm := newMockGeneration()
	llm.err = errors.New("provider down")

	_, err := NewComposer(llm, newMockPrompts()).Compose(context.Background(), "q",
		[]domain.RetrievedChunk{textChunk("c0", "d1", "text", 1, 0.5)})
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestComposePromptFailureIsGenerationError(t *testing.T) {
	prompts := newMockPrompts()
	prompts.err = errors.New("disk gone")

	_, err := NewComposer(newMockGeneration(), prompts).Compose(context.Background(), "q",
		[]domain.RetrievedChunk{textChunk("c0", "d1", "text", 1, 0.5)})
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestFormatContext(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		textChunk("c0", "d1", "paginated content", 3, 0.9),
		textChunk("c1", "d1", "unpaginated content", domain.PageUnknown, 0.5),
	}

	got := formatContext(chunks)
	assert.Equal(t, "[text] [Page 3]\npaginated content\n\n---\n\n[text] [Page ?]\nunpaginated content", got)
}

func TestClassify(t *testing.T) {
	composer := NewComposer(newMockGeneration(), newMockPrompts())

	t.Run("table fence", func(t *testing.T) {
		payload := composer.Classify("Here you go:\n```markdown\n| a | b |\n|---|---|\n| 1 | 2 |\n```")
		assert.Equal(t, domain.PayloadTable, payload.Kind)
		assert.Equal(t, "| a | b |\n|---|---|\n| 1 | 2 |", payload.Content)
		assert.Equal(t, "markdown", payload.Format)
	})

	t.Run("image references", func(t *testing.T) {
		payload := composer.Classify("See [Image: revenue chart] and [Image: org diagram].")
		assert.Equal(t, domain.PayloadImage, payload.Kind)
		assert.Equal(t, []string{"revenue chart", "org diagram"}, payload.References)
	})

	t.Run("table wins over image", func(t *testing.T) {
		payload := composer.Classify("```markdown\n| x |\n```\nAlso [Image: chart].")
		assert.Equal(t, domain.PayloadTable, payload.Kind)
	})

	t.Run("plain text", func(t *testing.T) {
		payload := composer.Classify("Revenue grew by 12%.")
		assert.Equal(t, domain.PayloadText, payload.Kind)
		assert.Equal(t, "Revenue grew by 12%.", payload.Content)
	})
}
