package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/cache"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/project"
	"github.com/poiesic/recall/search"
	"github.com/poiesic/recall/storage"
)

// defaultSource labels documents ingested without an explicit source.
const defaultSource = "manual"

// Pipeline orchestrates the ingestion and processing of documents.
// It manages concurrent generation of embeddings and brief summaries.
type Pipeline struct {
	repository    storage.DocumentRepository
	embeddingPool *ants.Pool
	summaryPool   *ants.Pool
	embeddingProc processor
	summaryProc   processor // nil when no summary model is configured
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		if p.summaryPool != nil {
			p.summaryPool.Release()
		}

		// Create new pools
		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		summaryPool, err := ants.NewPool(size)
		if err != nil {
			embeddingPool.Release()
			return err
		}

		p.embeddingPool = embeddingPool
		p.summaryPool = summaryPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. The summary stage is built
// only when the provider has a summary model configured; without one,
// documents are stored and embedded but never summarized. The cache memoizes
// accepted summaries and may be nil.
func NewPipeline(
	repository storage.DocumentRepository,
	provider ai.AIProvider,
	memo *cache.Cache,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default logger
	logger := slog.Default()

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	summaryPool, err := ants.NewPool(poolSize)
	if err != nil {
		embeddingPool.Release()
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		repository:    repository,
		embeddingPool: embeddingPool,
		summaryPool:   summaryPool,
		logger:        logger,
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processors after options are applied (so they get final config)
	embeddingProc, err := newEmbeddingProcessor(repository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	if completer := provider.Summarizer(); completer != nil {
		config := provider.Config()
		summarizer, err := search.NewSummarizer(completer, memo,
			config.SummaryModel, config.SummaryTemperature, config.SummaryMaxTokens)
		if err != nil {
			p.Release()
			return nil, err
		}

		summaryProc, err := newSummaryProcessor(repository, summarizer, p.logger)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.summaryProc = summaryProc
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Namespace   string            // Defaults to core.DefaultNamespace
	Source      string            // Defaults to "manual"
	Metadata    map[string]string // Optional metadata to attach to documents
	Timestamp   time.Time         // Optional creation time (uses current time if zero)
	ProjectPath string            // Project root to associate with the documents
	SourcePath  string            // File path to detect the project root from when ProjectPath is empty
}

// Ingest stores contents as documents and processes them asynchronously.
// The documentType is applied to all documents in the batch. When no
// ProjectPath is given but a SourcePath is, the project root is detected by
// walking up from the source path. Processing includes generating embeddings
// and, when configured, brief summaries. Errors during async processing are
// logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, documentType core.DocumentType, contents []string, opts *IngestOptions) error {
	if len(contents) == 0 {
		return ErrNoContent
	}
	if opts == nil {
		opts = &IngestOptions{}
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = core.DefaultNamespace
	}
	source := opts.Source
	if source == "" {
		source = defaultSource
	}
	projectPath := opts.ProjectPath
	if projectPath == "" && opts.SourcePath != "" {
		if root, ok := project.FindRoot(opts.SourcePath); ok {
			projectPath = root
		}
	}

	// Create documents
	docs := make([]*core.Document, len(contents))
	for i, content := range contents {
		timestamp := opts.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}

		docs[i] = &core.Document{
			Content:      content,
			Metadata:     opts.Metadata,
			Namespace:    namespace,
			DocumentType: documentType,
			Source:       source,
			ProjectPath:  projectPath,
			CreatedAt:    timestamp,
		}

		if err := core.ValidateDocument(docs[i]); err != nil {
			return err
		}
	}

	// Add to storage
	added, err := p.repository.AddDocuments(ctx, docs...)
	if err != nil {
		return err
	}

	if len(added) == 0 {
		return nil
	}

	// Extract IDs
	ids := make([]core.ID, len(added))
	for i, doc := range added {
		ids[i] = doc.Id
	}

	// Submit for async processing. The summary stage is chained after the
	// embedding stage so the two never race on updating the same documents.
	p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}

		if p.summaryProc != nil {
			p.summaryPool.Submit(func() {
				if err := p.summaryProc.process(context.Background(), ids...); err != nil {
					p.logger.Error("error processing summaries", "err", err)
				}
			})
		}
	})

	return nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
	if p.summaryPool != nil {
		p.summaryPool.Release()
	}
}
