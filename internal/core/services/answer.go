package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driving"
	"github.com/quaero-labs/quaero/internal/logger"
)

// Ensure AnswerPipeline implements the interface.
var _ driving.AnswerService = (*AnswerPipeline)(nil)

// defaultMediaKeep bounds how many supporting media chunks survive the
// relevance filter per sub-question.
const defaultMediaKeep = 3

// AnswerPipeline orchestrates the end-to-end query flow: cache lookup,
// correction, decomposition, two-stage retrieval, composition, media
// filtering and caching. All collaborators are injected; the pipeline
// holds no global state.
type AnswerPipeline struct {
	rewriter  *Rewriter
	retriever *Retriever
	composer  *Composer
	media     *MediaFilter
	cache     *AnswerCache
	mediaKeep int
}

// NewAnswerPipeline wires the pipeline from its stages.
func NewAnswerPipeline(
	rewriter *Rewriter,
	retriever *Retriever,
	composer *Composer,
	media *MediaFilter,
	cache *AnswerCache,
) *AnswerPipeline {
	return &AnswerPipeline{
		rewriter:  rewriter,
		retriever: retriever,
		composer:  composer,
		media:     media,
		cache:     cache,
		mediaKeep: defaultMediaKeep,
	}
}

// Answer runs the full pipeline for a question.
func (p *AnswerPipeline) Answer(ctx context.Context, question string, scope []string) (*domain.Answer, error) {
	logger.Section("Query")

	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be blank", domain.ErrInvalidRequest)
	}

	// A cache hit short-circuits the entire pipeline, before any
	// correction or retrieval work.
	if answer, ok := p.cache.Get(scope, question); ok {
		logger.Info("Returning cached answer")
		return answer, nil
	}

	corrected := p.rewriter.Correct(ctx, question)
	subs := p.rewriter.Decompose(ctx, corrected)

	answers, err := p.answerAll(ctx, subs, scope)
	if err != nil {
		return nil, err
	}

	merged := mergeAnswers(answers, p.composer)
	p.cache.Put(scope, question, merged)
	logger.Info("Query completed")
	return merged, nil
}

// answerAll processes sub-questions concurrently and reassembles the
// results in the original sub-question order. Ordering is a
// correctness property, not an optimisation.
func (p *AnswerPipeline) answerAll(ctx context.Context, subs []string, scope []string) ([]*domain.Answer, error) {
	if len(subs) == 1 {
		answer, err := p.answerOne(ctx, subs[0], scope)
		if err != nil {
			return nil, err
		}
		return []*domain.Answer{answer}, nil
	}

	answers := make([]*domain.Answer, len(subs))
	errs := make([]error, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub string) {
			defer wg.Done()
			answers[i], errs[i] = p.answerOne(ctx, sub, scope)
		}(i, sub)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sub-question %q: %w", subs[i], err)
		}
	}
	return answers, nil
}

// answerOne retrieves, composes and media-filters a single question.
func (p *AnswerPipeline) answerOne(ctx context.Context, question string, scope []string) (*domain.Answer, error) {
	chunks, err := p.retriever.Retrieve(ctx, question, scope)
	if err != nil {
		return nil, err
	}

	answer, err := p.composer.Compose(ctx, question, chunks)
	if err != nil {
		return nil, err
	}

	p.pruneMediaSources(ctx, answer, chunks)
	return answer, nil
}

// pruneMediaSources drops media sources the relevance filter rejected,
// preserving the order chunks were fed to generation.
func (p *AnswerPipeline) pruneMediaSources(ctx context.Context, answer *domain.Answer, chunks []domain.RetrievedChunk) {
	var media []domain.RetrievedChunk
	for _, c := range chunks {
		if c.Chunk.Kind != domain.ChunkText {
			media = append(media, c)
		}
	}
	if len(media) == 0 {
		return
	}

	keptIDs := make(map[string]bool)
	for _, c := range p.media.Filter(ctx, answer.Text, media, p.mediaKeep) {
		keptIDs[c.ID] = true
	}

	sources := answer.Sources[:0]
	for i, c := range chunks {
		if c.Chunk.Kind != domain.ChunkText && !keptIDs[c.ID] {
			continue
		}
		sources = append(sources, answer.Sources[i])
	}
	answer.Sources = sources
}

// mergeAnswers joins sub-answers in sub-question order. A single
// answer passes through untouched; multiple answers are joined with
// blank lines and the joined text is re-classified.
func mergeAnswers(answers []*domain.Answer, composer *Composer) *domain.Answer {
	if len(answers) == 1 {
		return answers[0]
	}

	texts := make([]string, len(answers))
	var sources []domain.Source
	for i, a := range answers {
		texts[i] = a.Text
		sources = append(sources, a.Sources...)
	}

	text := strings.Join(texts, "\n\n")
	return &domain.Answer{
		Text:       text,
		Sources:    sources,
		Structured: composer.Classify(text),
	}
}
