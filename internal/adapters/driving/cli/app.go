package cli

import (
	"fmt"
	"path/filepath"

	"github.com/quaero-labs/quaero/internal/adapters/driven/config/file"
	embollama "github.com/quaero-labs/quaero/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/quaero-labs/quaero/internal/adapters/driven/embedding/openai"
	"github.com/quaero-labs/quaero/internal/adapters/driven/llm"
	llmollama "github.com/quaero-labs/quaero/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/quaero-labs/quaero/internal/adapters/driven/llm/openai"
	"github.com/quaero-labs/quaero/internal/adapters/driven/storage/sqlite"
	"github.com/quaero-labs/quaero/internal/adapters/driven/vectorstore/chromem"
	"github.com/quaero-labs/quaero/internal/core/ports/driven"
	"github.com/quaero-labs/quaero/internal/core/services"
	"github.com/quaero-labs/quaero/internal/extract"
)

// app wires the driven adapters and core services for a CLI run.
type app struct {
	config   *file.ConfigStore
	prompts  *file.PromptStore
	pipeline *services.AnswerPipeline
	ingestor *services.Ingestor

	store    driven.VectorStore
	registry driven.DocumentRegistry
	embedder driven.EmbeddingService
	gen      driven.GenerationService
}

// newApp builds the full service graph from configuration.
func newApp() (*app, error) {
	cfg, err := file.NewConfigStore(configDirFlag)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	promptDir := ""
	if configDirFlag != "" {
		promptDir = filepath.Join(configDirFlag, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("open prompt store: %w", err)
	}

	embedProvider, err := buildEmbedding(cfg)
	if err != nil {
		return nil, err
	}

	gen, err := buildGeneration(cfg)
	if err != nil {
		return nil, err
	}
	if rps := cfg.GetFloat(driven.ConfigLLMRateLimit); rps > 0 {
		gen = llm.NewRateLimited(gen, rps)
	}

	dataDir := ""
	vectorDir := ""
	if configDirFlag != "" {
		dataDir = filepath.Join(configDirFlag, "data")
		vectorDir = filepath.Join(configDirFlag, "data", "vectors")
	} else {
		home := filepath.Dir(cfg.Path())
		dataDir = filepath.Join(home, "data")
		vectorDir = filepath.Join(home, "data", "vectors")
	}

	store, err := chromem.New(vectorDir, embedProvider)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	registry, err := sqlite.NewRegistry(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open document registry: %w", err)
	}

	embedder := services.NewEmbedder(embedProvider)
	chunks := services.NewChunkStore(store, embedder)

	topK := cfg.GetInt(driven.ConfigRetrievalTopK)
	if topK <= 0 {
		topK = services.DefaultTopK
	}
	topDocs := cfg.GetInt(driven.ConfigRetrievalTopDocs)
	if topDocs <= 0 {
		topDocs = services.DefaultTopDocs
	}

	pipeline := services.NewAnswerPipeline(
		services.NewRewriter(gen, prompts),
		services.NewRetriever(chunks, embedder, topK, topDocs),
		services.NewComposer(gen, prompts),
		services.NewMediaFilter(gen, prompts),
		services.NewAnswerCache(cfg.GetInt(driven.ConfigCacheMaxEntries)),
	)

	return &app{
		config:   cfg,
		prompts:  prompts,
		pipeline: pipeline,
		ingestor: services.NewIngestor(chunks, registry, extract.Defaults()),
		store:    store,
		registry: registry,
		embedder: embedProvider,
		gen:      gen,
	}, nil
}

// Close releases the app's driven adapters.
func (a *app) Close() {
	a.store.Close()
	a.registry.Close()
	a.embedder.Close()
	a.gen.Close()
}

// buildEmbedding selects the embedding adapter from configuration.
// The default is a local Ollama server, which needs no API key.
func buildEmbedding(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	switch provider := cfg.GetString(driven.ConfigEmbeddingProvider); provider {
	case "openai":
		return embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:  cfg.GetString(driven.ConfigEmbeddingAPIKey),
			BaseURL: cfg.GetString(driven.ConfigEmbeddingBaseURL),
			Model:   cfg.GetString(driven.ConfigEmbeddingModel),
		})
	case "", "ollama":
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL: cfg.GetString(driven.ConfigEmbeddingBaseURL),
			Model:   cfg.GetString(driven.ConfigEmbeddingModel),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildGeneration selects the generation adapter from configuration.
func buildGeneration(cfg driven.ConfigStore) (driven.GenerationService, error) {
	switch provider := cfg.GetString(driven.ConfigLLMProvider); provider {
	case "openai":
		return llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.GetString(driven.ConfigLLMAPIKey),
			BaseURL: cfg.GetString(driven.ConfigLLMBaseURL),
			Model:   cfg.GetString(driven.ConfigLLMModel),
		})
	case "", "ollama":
		return llmollama.NewLLMService(llmollama.Config{
			BaseURL: cfg.GetString(driven.ConfigLLMBaseURL),
			Model:   cfg.GetString(driven.ConfigLLMModel),
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
