package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driven"
	"github.com/quaero-labs/quaero/internal/logger"
)

// lowConfidencePhrases signal that the model could not ground an answer
// in the provided context. Matching is case-insensitive substring.
var lowConfidencePhrases = []string{
	"i don't know",
	"not enough information",
	"cannot determine",
}

var (
	tableFenceRe = regexp.MustCompile("(?s)```markdown\n(.*?)\n```")
	imageRefRe   = regexp.MustCompile(`\[Image:\s?(.*?)\]`)
)

// Composer builds the generation prompt from retrieved chunks, invokes
// the provider and classifies the result.
type Composer struct {
	llm     driven.GenerationService
	prompts driven.PromptStore
}

// NewComposer creates a composer over the given generation provider.
func NewComposer(llm driven.GenerationService, prompts driven.PromptStore) *Composer {
	return &Composer{llm: llm, prompts: prompts}
}

// Compose generates an answer grounded in the given chunks. An empty
// chunk list is a generation error ("not found in document"), never a
// success with empty content. Low-confidence model output is also
// reported as a generation error rather than returned.
func (c *Composer) Compose(ctx context.Context, question string, chunks []domain.RetrievedChunk) (*domain.Answer, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no relevant context found to answer the question", domain.ErrGeneration)
	}

	template, err := c.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return nil, fmt.Errorf("%w: answer prompt unavailable: %v", domain.ErrGeneration, err)
	}

	prompt := fmt.Sprintf(template, question, formatContext(chunks))
	logger.Debug("Generating answer from %d chunks", len(chunks))

	raw, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0.3})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: model returned an empty answer", domain.ErrGeneration)
	}
	if phrase := lowConfidence(text); phrase != "" {
		return nil, fmt.Errorf("%w: answer not found in the documents (model said %q)", domain.ErrGeneration, phrase)
	}

	sources := make([]domain.Source, len(chunks))
	for i, chunk := range chunks {
		sources[i] = domain.Source{
			DocumentID: chunk.Chunk.DocumentID,
			Page:       chunk.Chunk.Page,
			Kind:       chunk.Chunk.Kind,
		}
	}

	return &domain.Answer{
		Text:       text,
		Sources:    sources,
		Structured: c.Classify(text),
	}, nil
}

// formatContext concatenates each chunk's kind tag, page reference and
// content into the prompt context block.
func formatContext(chunks []domain.RetrievedChunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		page := "?"
		if chunk.Chunk.Page != domain.PageUnknown {
			page = fmt.Sprintf("%d", chunk.Chunk.Page)
		}
		parts[i] = fmt.Sprintf("[%s] [Page %s]\n%s", chunk.Chunk.Kind, page, strings.TrimSpace(chunk.Chunk.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// lowConfidence returns the matched phrase, or "" if the text looks
// like a grounded answer.
func lowConfidence(text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range lowConfidencePhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}

// Classify detects the structured portion of a generated answer.
// Detection order is table-first, then image, then plain text: a
// response containing both markers is classified as a table.
func (c *Composer) Classify(text string) *domain.StructuredPayload {
	if m := tableFenceRe.FindStringSubmatch(text); m != nil {
		return &domain.StructuredPayload{
			Kind:    domain.PayloadTable,
			Content: strings.TrimSpace(m[1]),
			Format:  "markdown",
		}
	}

	if ms := imageRefRe.FindAllStringSubmatch(text, -1); ms != nil {
		refs := make([]string, len(ms))
		for i, m := range ms {
			refs[i] = m[1]
		}
		return &domain.StructuredPayload{
			Kind:       domain.PayloadImage,
			Content:    text,
			References: refs,
		}
	}

	return &domain.StructuredPayload{
		Kind:    domain.PayloadText,
		Content: text,
	}
}
