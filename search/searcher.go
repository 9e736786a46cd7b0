package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/cache"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// Score fusion constants. Embedding and keyword weights sum to 1 so fused
// scores stay in [0, 1] before boosting; the project boost is capped at 1.
const (
	embeddingWeight = 0.7
	keywordWeight   = 0.3
	projectBoost    = 0.15

	defaultLimit     = 10
	defaultThreshold = 0.7

	// snippetLength bounds displayed content when no summary is stored.
	snippetLength = 800
)

// Searcher runs the hybrid retrieval and ranking pipeline over documents.
type Searcher struct {
	repository storage.DocumentRepository
	embedder   ai.Embedder
	expander   *Expander
	reranker   *Reranker
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher. Expansion and reranking stages are
// built only when the provider has models configured for them; requests
// asking for an unconfigured stage silently skip it. The cache memoizes
// accepted expansions and may be nil.
func NewSearcher(
	repository storage.DocumentRepository,
	provider ai.AIProvider,
	memo *cache.Cache,
	opts ...Option,
) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		repository: repository,
		embedder:   provider.Embedder(),
		logger:     slog.Default(),
	}

	config := provider.Config()
	if completer := provider.QueryExpander(); completer != nil {
		expander, err := NewExpander(completer, memo, config.ExpansionModel, config.ExpansionTemperature)
		if err != nil {
			return nil, err
		}
		s.expander = expander
	}
	if completer := provider.Reranker(); completer != nil {
		reranker, err := NewReranker(completer)
		if err != nil {
			return nil, err
		}
		s.reranker = reranker
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs the full pipeline for one request.
func (s *Searcher) Search(ctx context.Context, request *core.SearchRequest) (*core.ResultSet, error) {
	return s.SearchWithMonitor(ctx, request, nil)
}

// SearchWithMonitor runs the full pipeline with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, request *core.SearchRequest, monitor SearchMonitor) (*core.ResultSet, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := core.ValidateSearchRequest(request); err != nil {
		return nil, err
	}

	monitor.Start(request)

	limit := request.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	// A nil threshold means the caller wants the default; an explicit zero
	// admits every candidate on the embedding branch.
	threshold := float32(defaultThreshold)
	if request.Threshold != nil {
		threshold = *request.Threshold
	}

	terms := SanitizeLexicalTerms(request.Query)
	hybrid := request.Hybrid && len(terms) > 0

	mode := core.SearchModeEmbedding
	if hybrid {
		mode = core.SearchModeHybrid
	}

	set := &core.ResultSet{
		Query: request.Query,
		Mode:  mode,
	}

	// An empty query has nothing to embed or match; skip storage entirely.
	if strings.TrimSpace(request.Query) == "" {
		monitor.Finish(set)
		return set, nil
	}

	// 1. Optional query expansion. Degrades to the original query.
	effectiveQuery := request.Query
	if request.Expand && s.expander != nil {
		expansion := s.expander.Expand(ctx, request.Query)
		monitor.AfterExpansion(expansion)
		if expansion.Applied() {
			effectiveQuery = expansion.Expanded
			set.ExpandedQuery = expansion.Expanded
		}
	}

	// 2. Embed the (possibly expanded) query.
	embedding, err := s.embedder.EmbedText(ctx, effectiveQuery)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", effectiveQuery, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(embedding)

	// 3. Retrieve admissible candidates.
	var lexicalTerms []string
	if hybrid {
		lexicalTerms = terms
	}
	candidates, err := s.repository.FindCandidates(ctx, storage.CandidateQuery{
		Vector:       embedding,
		Namespace:    request.Namespace,
		DocumentType: request.DocumentType,
		Metadata:     request.Metadata,
		Threshold:    threshold,
		LexicalTerms: lexicalTerms,
	})
	if err != nil {
		s.logger.Error("error querying for candidates", "err", err)
		return nil, err
	}
	monitor.AfterCandidateRetrieval(candidates)

	// 4. Fuse scores, apply the project-affinity boost, order, truncate.
	results := s.fuse(candidates, request, hybrid)
	set.TotalFound = len(results)
	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	monitor.AfterFusion(results)

	// 5. Optional reranking. Failures fall back to the fused ordering.
	if request.Rerank && s.reranker != nil {
		reranked, err := s.reranker.Rerank(ctx, request.Query, results, limit)
		if err != nil {
			s.logger.Warn("rerank failed, keeping fused order", "err", err)
			monitor.RerankFallback(err)
		} else {
			results = reranked
			monitor.RerankApplied(results)
		}
	}

	// 6. Select displayed content.
	for _, result := range results {
		result.Display = displayContent(result.Document, request.IncludeContent)
	}

	set.Results = results
	monitor.Finish(set)
	return set, nil
}

// fuse converts candidates into scored results. In hybrid mode the final
// score blends embedding and keyword relevance; otherwise it is the embedding
// score alone. Documents from the caller's project get a capped boost.
func (s *Searcher) fuse(candidates []*storage.Candidate, request *core.SearchRequest, hybrid bool) []*core.SearchResult {
	results := make([]*core.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		final := c.EmbeddingScore
		if hybrid {
			var keyword float32
			if c.KeywordScore != nil {
				keyword = *c.KeywordScore
			}
			final = embeddingWeight*c.EmbeddingScore + keywordWeight*keyword
		}

		sameProject := request.ProjectPath != "" && c.Document.ProjectPath == request.ProjectPath
		if sameProject {
			final += projectBoost
			if final > 1.0 {
				final = 1.0
			}
		}

		results = append(results, &core.SearchResult{
			Document:       c.Document,
			EmbeddingScore: c.EmbeddingScore,
			KeywordScore:   c.KeywordScore,
			FinalScore:     final,
			SameProject:    sameProject,
		})
	}
	return results
}

// sortResults orders by final score descending; ties break on ascending
// document ID so identical scores always produce the same order.
func sortResults(results []*core.SearchResult) {
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.FinalScore > b.FinalScore {
			return -1
		}
		if a.FinalScore < b.FinalScore {
			return 1
		}
		if a.Document.Id < b.Document.Id {
			return -1
		}
		if a.Document.Id > b.Document.Id {
			return 1
		}
		return 0
	})
}

// displayContent picks what a result shows: full content when asked for,
// otherwise the stored summary, otherwise a leading snippet.
func displayContent(doc *core.Document, includeContent bool) string {
	if includeContent {
		return doc.Content
	}
	if doc.BriefSummary != "" {
		return doc.BriefSummary
	}
	return Snippet(doc.Content, snippetLength)
}
