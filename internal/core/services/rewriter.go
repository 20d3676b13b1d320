package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/quaero-labs/quaero/internal/core/ports/driven"
	"github.com/quaero-labs/quaero/internal/logger"
)

// NormalizeQuestion canonicalises a raw question for cache-key
// purposes: trim and lower-case. Pure function, no I/O. The cache is
// keyed on user intent, so correction output never feeds this.
func NormalizeQuestion(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// Rewriter performs best-effort question rewriting via the generation
// provider. Every method degrades to identity on failure: rewriting is
// enrichment, and must never block retrieval.
type Rewriter struct {
	llm     driven.GenerationService
	prompts driven.PromptStore
}

// NewRewriter creates a rewriter. llm may be nil, in which case both
// correction and decomposition are identity operations.
func NewRewriter(llm driven.GenerationService, prompts driven.PromptStore) *Rewriter {
	return &Rewriter{llm: llm, prompts: prompts}
}

// Correct asks the provider for a typo/grammar-corrected rewrite of
// the question. On any failure the original question is returned
// unchanged; correction never raises.
func (r *Rewriter) Correct(ctx context.Context, question string) string {
	if r.llm == nil {
		return question
	}

	template, err := r.prompts.Load(driven.PromptCorrection)
	if err != nil {
		logger.Warn("Correction prompt unavailable, using original question: %v", err)
		return question
	}

	corrected, err := r.llm.Generate(ctx, fmt.Sprintf(template, question), driven.GenerateOptions{Temperature: 0.0})
	if err != nil {
		logger.Warn("Query correction failed, using original question: %v", err)
		return question
	}

	corrected = strings.TrimSpace(corrected)
	if corrected == "" {
		return question
	}
	if corrected != question {
		logger.Info("Corrected question %q to %q", question, corrected)
	}
	return corrected
}

// Decompose asks the provider to split a compound question into
// ordered sub-questions, one per line. If the provider fails or
// returns nothing usable, the result is the question itself:
// decomposition never reduces availability.
func (r *Rewriter) Decompose(ctx context.Context, question string) []string {
	identity := []string{question}
	if r.llm == nil {
		return identity
	}

	template, err := r.prompts.Load(driven.PromptDecompose)
	if err != nil {
		logger.Warn("Decompose prompt unavailable, keeping question whole: %v", err)
		return identity
	}

	raw, err := r.llm.Generate(ctx, fmt.Sprintf(template, question), driven.GenerateOptions{Temperature: 0.0})
	if err != nil {
		logger.Warn("Decomposition failed, keeping question whole: %v", err)
		return identity
	}

	subs := parseSubQuestions(raw)
	if len(subs) == 0 {
		return identity
	}
	if len(subs) > 1 {
		logger.Info("Decomposed question into %d sub-questions", len(subs))
	}
	return subs
}

// parseSubQuestions extracts sub-questions from provider output,
// one per line, stripping list markers.
func parseSubQuestions(raw string) []string {
	var subs []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		// Strip "1." / "2)" style numbering.
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 3 && isDigits(line[:i]) {
			line = strings.TrimSpace(line[i+1:])
		}
		if line == "" {
			continue
		}
		subs = append(subs, line)
	}
	return subs
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
