// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package recall

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/openai"
	"github.com/poiesic/recall/cache"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
	"github.com/poiesic/recall/reembed"
	"github.com/poiesic/recall/search"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/storage/badger"
)

const (
	defaultCacheEntries = 1000
	defaultCacheTTL     = 1 * time.Hour
)

// Store is the top-level handle to a recall database. It owns the storage
// backend, the document repository, the AI provider and the augmentation
// cache, and builds searchers and ingestion pipelines on top of them.
type Store struct {
	backend  *badger.Backend
	docRepo  storage.DocumentRepository
	provider ai.AIProvider
	memo     *cache.Cache
	searcher *search.Searcher
	pipeline *ingestion.Pipeline
	logger   *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	aiConfig     *ai.Config
	cacheEntries int64
	cacheTTL     time.Duration
	inMemory     bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) StoreOption {
	return func(o *storeOptions) {
		o.aiConfig = config
	}
}

// WithCacheSize sets the maximum number of augmentation cache entries.
func WithCacheSize(entries int64) StoreOption {
	return func(o *storeOptions) {
		o.cacheEntries = entries
	}
}

// WithCacheTTL sets the time-to-live for augmentation cache entries.
func WithCacheTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.cacheTTL = ttl
	}
}

// WithInMemory opens the store without persistence. The filePath is ignored.
func WithInMemory() StoreOption {
	return func(o *storeOptions) {
		o.inMemory = true
	}
}

// NewStore opens (creating if necessary) a recall database at filePath.
func NewStore(filePath string, opts ...StoreOption) (*Store, error) {
	options := &storeOptions{
		aiConfig:     ai.DefaultConfig(),
		cacheEntries: defaultCacheEntries,
		cacheTTL:     defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create document repository
	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	memo, err := cache.New(options.cacheEntries, options.cacheTTL)
	if err != nil {
		provider.Close()
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	store := &Store{
		backend:  backend,
		docRepo:  docRepo,
		provider: provider,
		memo:     memo,
		logger:   slog.Default(),
	}

	store.searcher, err = search.NewSearcher(docRepo, provider, memo)
	if err != nil {
		store.Close()
		return nil, err
	}

	store.pipeline, err = ingestion.NewPipeline(docRepo, provider, memo)
	if err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

// Search runs a search request through the retrieval pipeline.
func (s *Store) Search(ctx context.Context, request *core.SearchRequest) (*core.ResultSet, error) {
	return s.searcher.Search(ctx, request)
}

// Ingest stores the given contents as documents of documentType and schedules
// embedding and summary processing.
func (s *Store) Ingest(ctx context.Context, documentType core.DocumentType, contents []string, opts *ingestion.IngestOptions) error {
	return s.pipeline.Ingest(ctx, documentType, contents, opts)
}

// Get retrieves a single document by ID.
func (s *Store) Get(ctx context.Context, id core.ID) (*core.Document, error) {
	return s.docRepo.GetDocument(ctx, id)
}

// DocumentRepository exposes the underlying document repository.
func (s *Store) DocumentRepository() storage.DocumentRepository {
	return s.docRepo
}

// NewSearcher builds a searcher with custom options sharing the store's
// repository, provider and cache.
func (s *Store) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(s.docRepo, s.provider, s.memo, opts...)
}

// NewIngestionPipeline builds an ingestion pipeline with custom options
// sharing the store's repository, provider and cache. The caller owns the
// returned pipeline and must Release it.
func (s *Store) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.docRepo, s.provider, s.memo, opts...)
}

// NewReembedder builds a reembedder over all stored documents, writing
// progress to the given writer.
func (s *Store) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(s.docRepo, s.provider.Embedder(), config, progress)
}

// Close releases the pipeline, provider, cache and storage in dependency
// order. The store must not be used afterwards.
func (s *Store) Close() error {
	if s.pipeline != nil {
		s.pipeline.Release()
	}

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	s.memo.Close()

	if err := s.docRepo.Close(); err != nil {
		s.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
